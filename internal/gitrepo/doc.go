// Package gitrepo opens git repositories served by gitshelf.
//
// Repository is the handle the repository directory caches per name: it wraps
// a go-git repository opened through filesystem storage, bare or not, and
// exposes the metadata a web viewer lists (HEAD, gitweb description, origin
// remote). ParseRemoteURL turns remote strings into structured values.
package gitrepo
