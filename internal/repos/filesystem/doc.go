// Package filesystem adapts go-billy filesystems to the existence and listing
// probes used by repository discovery. The operating system implementation is
// rooted at the repositories root; tests substitute memfs.
package filesystem
