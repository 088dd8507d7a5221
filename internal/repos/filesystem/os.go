package filesystem

import (
	"errors"
	"io/fs"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

const currentDirectoryConstant = "."

// BillyFileSystem answers existence and listing queries against a billy filesystem rooted at a repositories root.
type BillyFileSystem struct {
	filesystem billy.Filesystem
}

// NewOSFileSystem constructs a BillyFileSystem rooted at the provided operating system directory.
func NewOSFileSystem(root string) *BillyFileSystem {
	return NewBillyFileSystem(osfs.New(root))
}

// NewBillyFileSystem wraps an arbitrary billy filesystem such as memfs.
func NewBillyFileSystem(filesystem billy.Filesystem) *BillyFileSystem {
	return &BillyFileSystem{filesystem: filesystem}
}

// Exists reports whether the path is present. Missing paths and paths below a
// non-directory report false; any other failure is returned.
func (fileSystem *BillyFileSystem) Exists(path string) (bool, error) {
	_, statError := fileSystem.Stat(path)
	if statError == nil {
		return true, nil
	}
	if IsNotExist(statError) {
		return false, nil
	}
	return false, statError
}

// Stat retrieves file metadata relative to the root.
func (fileSystem *BillyFileSystem) Stat(path string) (fs.FileInfo, error) {
	if len(path) == 0 {
		path = currentDirectoryConstant
	}
	return fileSystem.filesystem.Stat(path)
}

// ReadDir lists the direct children of a directory relative to the root.
func (fileSystem *BillyFileSystem) ReadDir(path string) ([]fs.FileInfo, error) {
	if len(path) == 0 {
		path = currentDirectoryConstant
	}
	return fileSystem.filesystem.ReadDir(path)
}

// Join joins path elements with the filesystem separator.
func (fileSystem *BillyFileSystem) Join(elements ...string) string {
	return fileSystem.filesystem.Join(elements...)
}

// IsNotExist classifies errors that mean the path is absent, including a
// parent component that is not a directory.
func IsNotExist(candidateError error) bool {
	if candidateError == nil {
		return false
	}
	if errors.Is(candidateError, fs.ErrNotExist) {
		return true
	}
	return errors.Is(candidateError, syscall.ENOTDIR)
}
