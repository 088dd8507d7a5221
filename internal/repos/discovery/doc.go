// Package discovery exposes the repositories stored directly below a root
// directory as a read-only, name-keyed collection.
//
// No registry is kept. A name is a repository when root/<name><suffix>/<marker>
// exists for one of the configured suffixes, the marker defaulting to gitweb's
// git-daemon-export-ok. Suffixes are tried most-recently-matched first, since
// the repositories of one root usually share a naming convention. Handles are
// cached; with removal detection enabled every lookup re-verifies the
// filesystem and evicts repositories that disappeared, otherwise a handle is
// trusted for the lifetime of the Directory.
package discovery
