// Package container adapts the autodetecting repository directory to the
// Collection contract consumed by the viewer and its commands.
package container
