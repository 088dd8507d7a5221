package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	dotGitDirectoryNameConstant       = ".git"
	descriptionFileNameConstant       = "description"
	originRemoteNameConstant          = "origin"
	defaultDescriptionPrefixConstant  = "Unnamed repository;"
	openErrorTemplateConstant         = "open repository %s: %v"
	descriptionReadErrorTemplate      = "read description of %s: %w"
	headReadErrorTemplateConstant     = "read HEAD of %s: %w"
	remoteReadErrorTemplateConstant   = "read remote %s of %s: %w"
	metadataScopeErrorMessageConstant = "scope metadata directory"
)

// OpenError reports a directory that could not be opened as a git repository.
type OpenError struct {
	Path  string
	Cause error
}

// Error describes the failure.
func (openError OpenError) Error() string {
	return fmt.Sprintf(openErrorTemplateConstant, openError.Path, openError.Cause)
}

// Unwrap exposes the underlying cause.
func (openError OpenError) Unwrap() error {
	return openError.Cause
}

// Repository is an opened git repository addressed by its directory path.
type Repository struct {
	path               string
	namespace          string
	repository         *git.Repository
	metadataFileSystem billy.Filesystem
	bare               bool
}

// Open opens the bare or non-bare repository stored at path and tags it with namespace.
func Open(path string, namespace string) (*Repository, error) {
	return OpenFileSystem(path, namespace, osfs.New(path))
}

// OpenFileSystem opens the repository stored in repositoryFileSystem. path is
// recorded for display only.
func OpenFileSystem(path string, namespace string, repositoryFileSystem billy.Filesystem) (*Repository, error) {
	dotGitInfo, dotGitError := repositoryFileSystem.Stat(dotGitDirectoryNameConstant)
	bare := dotGitError != nil || !dotGitInfo.IsDir()

	metadataFileSystem := repositoryFileSystem
	var worktreeFileSystem billy.Filesystem
	if !bare {
		scopedFileSystem, scopeError := repositoryFileSystem.Chroot(dotGitDirectoryNameConstant)
		if scopeError != nil {
			return nil, OpenError{Path: path, Cause: fmt.Errorf("%s: %w", metadataScopeErrorMessageConstant, scopeError)}
		}
		metadataFileSystem = scopedFileSystem
		worktreeFileSystem = repositoryFileSystem
	}

	storage := filesystem.NewStorage(metadataFileSystem, cache.NewObjectLRUDefault())
	repository, openError := git.Open(storage, worktreeFileSystem)
	if openError != nil {
		return nil, OpenError{Path: path, Cause: openError}
	}

	return &Repository{
		path:               path,
		namespace:          namespace,
		repository:         repository,
		metadataFileSystem: metadataFileSystem,
		bare:               bare,
	}, nil
}

// Path returns the repository directory.
func (repository *Repository) Path() string {
	return repository.path
}

// Namespace returns the namespace tag the repository was opened with.
func (repository *Repository) Namespace() string {
	return repository.namespace
}

// IsBare reports whether the repository has no worktree.
func (repository *Repository) IsBare() bool {
	return repository.bare
}

// Underlying returns the go-git repository for operations this type does not wrap.
func (repository *Repository) Underlying() *git.Repository {
	return repository.repository
}

// HeadReference returns HEAD without resolving it, so an unborn branch still
// reports its symbolic target.
func (repository *Repository) HeadReference() (*plumbing.Reference, error) {
	reference, referenceError := repository.repository.Reference(plumbing.HEAD, false)
	if referenceError != nil {
		return nil, fmt.Errorf(headReadErrorTemplateConstant, repository.path, referenceError)
	}
	return reference, nil
}

// Description returns the gitweb description. Missing files and git's
// placeholder text yield an empty string.
func (repository *Repository) Description() (string, error) {
	descriptionFile, openError := repository.metadataFileSystem.Open(descriptionFileNameConstant)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(descriptionReadErrorTemplate, repository.path, openError)
	}
	defer descriptionFile.Close()

	content, readError := io.ReadAll(descriptionFile)
	if readError != nil {
		return "", fmt.Errorf(descriptionReadErrorTemplate, repository.path, readError)
	}

	description := strings.TrimSpace(string(content))
	if strings.HasPrefix(description, defaultDescriptionPrefixConstant) {
		return "", nil
	}
	return description, nil
}

// OriginURL returns the first URL of the origin remote, reporting false when
// no origin is configured.
func (repository *Repository) OriginURL() (string, bool, error) {
	remote, remoteError := repository.repository.Remote(originRemoteNameConstant)
	if errors.Is(remoteError, git.ErrRemoteNotFound) {
		return "", false, nil
	}
	if remoteError != nil {
		return "", false, fmt.Errorf(remoteReadErrorTemplateConstant, originRemoteNameConstant, repository.path, remoteError)
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return "", false, nil
	}
	return remoteURLs[0], true, nil
}
