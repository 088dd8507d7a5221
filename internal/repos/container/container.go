package container

import (
	"iter"

	"go.uber.org/zap"

	"github.com/temirov/gitshelf/internal/gitrepo"
	"github.com/temirov/gitshelf/internal/repos/discovery"
	"github.com/temirov/gitshelf/internal/repos/filesystem"
)

// Collection is the named-collection contract the viewer consults.
type Collection interface {
	Root() string
	Contains(name string) (bool, error)
	Get(name string) (*gitrepo.Repository, bool, error)
	Names() iter.Seq2[string, error]
	Len() (int, error)
}

// Options carries the construction settings shared by every container a Factory builds.
// DetectRemovals is false in the zero value; start from DefaultOptions.
type Options struct {
	Namespace         string
	DetectRemovals    bool
	ExportOKPath      string
	DirectorySuffixes []string
	Logger            *zap.Logger
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DetectRemovals:    true,
		ExportOKPath:      discovery.DefaultMarkerPath,
		DirectorySuffixes: discovery.DefaultDirectorySuffixes(),
	}
}

// AutodetectingContainer serves repositories detected below a root directory.
type AutodetectingContainer struct {
	directory *discovery.Directory[*gitrepo.Repository]
}

// New builds an AutodetectingContainer over root on the operating system filesystem.
func New(root string, options Options) *AutodetectingContainer {
	return NewWithFileSystem(root, filesystem.NewOSFileSystem(root), gitrepo.Open, options)
}

// NewWithFileSystem builds an AutodetectingContainer with explicit probing and handle collaborators.
func NewWithFileSystem(root string, fileSystem discovery.FileSystem, open discovery.HandleConstructor[*gitrepo.Repository], options Options) *AutodetectingContainer {
	directoryOptions := discovery.Options{
		Namespace:         options.Namespace,
		RemovalPolicy:     discovery.RemovalPolicyFromBool(options.DetectRemovals),
		MarkerPath:        options.ExportOKPath,
		DirectorySuffixes: options.DirectorySuffixes,
		Logger:            options.Logger,
	}
	return &AutodetectingContainer{directory: discovery.NewDirectory(root, fileSystem, open, directoryOptions)}
}

// Root returns the repositories root.
func (container *AutodetectingContainer) Root() string {
	return container.directory.Root()
}

// Contains reports whether name is a servable repository.
func (container *AutodetectingContainer) Contains(name string) (bool, error) {
	return container.directory.Contains(name)
}

// Get returns the repository named name.
func (container *AutodetectingContainer) Get(name string) (*gitrepo.Repository, bool, error) {
	return container.directory.Lookup(name)
}

// Names yields the names of all servable repositories.
func (container *AutodetectingContainer) Names() iter.Seq2[string, error] {
	return container.directory.Names()
}

// Len counts the servable repositories.
func (container *AutodetectingContainer) Len() (int, error) {
	return container.directory.Len()
}

// Factory builds a container for a repositories root.
type Factory func(root string) Collection

// NewFactory binds options so the caller only supplies the root.
func NewFactory(options Options) Factory {
	return func(root string) Collection {
		return New(root, options)
	}
}
