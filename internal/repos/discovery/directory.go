package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/temirov/gitshelf/internal/repos/filesystem"
)

const (
	// DefaultMarkerPath is the gitweb export marker checked below each candidate directory.
	DefaultMarkerPath = "git-daemon-export-ok"
	// EveryDirectoryMarkerPath treats every subdirectory of the root as a repository.
	EveryDirectoryMarkerPath = "."
)

const (
	markerProbeErrorTemplateConstant        = "unable to probe %s: %w"
	handleConstructionErrorTemplateConstant = "unable to open repository %s: %w"
	logMessageHandleConstructedConstant     = "repository handle constructed"
	logMessageHandleEvictedConstant         = "stale repository handle evicted"
	logFieldRepositoryNameConstant          = "repository_name"
	logFieldRepositoryPathConstant          = "repository_path"
	constructionKeySeparatorConstant        = "\x00"
)

// DefaultDirectorySuffixes lists the suffixes tried when none are configured.
func DefaultDirectorySuffixes() []string {
	return []string{"", ".git"}
}

// FileSystem exposes the probes repository detection performs relative to the root.
type FileSystem interface {
	Exists(path string) (bool, error)
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.FileInfo, error)
	Join(elements ...string) string
}

// HandleConstructor opens a repository handle for a resolved directory path.
type HandleConstructor[H any] func(path string, namespace string) (H, error)

// RemovalPolicy selects whether lookups re-verify cached repositories on disk.
type RemovalPolicy int

const (
	// RemovalDetect re-checks the filesystem on every lookup and evicts vanished repositories.
	RemovalDetect RemovalPolicy = iota
	// RemovalIgnore trusts a cached handle forever once a repository has been found.
	RemovalIgnore
)

// RemovalPolicyFromBool converts a detect-removals flag into a policy.
func RemovalPolicyFromBool(detectRemovals bool) RemovalPolicy {
	if detectRemovals {
		return RemovalDetect
	}
	return RemovalIgnore
}

// DetectsRemovals reports whether lookups re-verify cached repositories.
func (policy RemovalPolicy) DetectsRemovals() bool {
	return policy != RemovalIgnore
}

// Options configures a Directory. The zero value selects every default.
type Options struct {
	Namespace         string
	RemovalPolicy     RemovalPolicy
	MarkerPath        string
	DirectorySuffixes []string
	Logger            *zap.Logger
}

type cacheEntry[H any] struct {
	handle        H
	suffix        string
	directoryName string
}

// Directory is a read-only view of the repositories found directly below a root.
// Membership is decided by probing the filesystem at lookup time; handles are
// cached by name.
type Directory[H any] struct {
	root          string
	namespace     string
	removalPolicy RemovalPolicy
	markerPath    string
	fileSystem    FileSystem
	construct     HandleConstructor[H]
	logger        *zap.Logger

	suffixes      *suffixOrder
	constructions singleflight.Group

	cacheMutex sync.Mutex
	cache      map[string]cacheEntry[H]
}

// NewDirectory constructs a Directory over root. fileSystem must be rooted at root.
func NewDirectory[H any](root string, fileSystem FileSystem, construct HandleConstructor[H], options Options) *Directory[H] {
	markerPath := options.MarkerPath
	if len(markerPath) == 0 {
		markerPath = DefaultMarkerPath
	}

	directorySuffixes := options.DirectorySuffixes
	if directorySuffixes == nil {
		directorySuffixes = DefaultDirectorySuffixes()
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Directory[H]{
		root:          root,
		namespace:     options.Namespace,
		removalPolicy: options.RemovalPolicy,
		markerPath:    markerPath,
		fileSystem:    fileSystem,
		construct:     construct,
		logger:        logger,
		suffixes:      newSuffixOrder(directorySuffixes),
		cache:         make(map[string]cacheEntry[H]),
	}
}

// Root returns the directory the repositories live in.
func (directory *Directory[H]) Root() string {
	return directory.root
}

// Lookup resolves name to a repository handle. A name that does not resolve
// reports found=false with a nil error; only filesystem and handle
// construction failures are returned as errors.
func (directory *Directory[H]) Lookup(name string) (H, bool, error) {
	var missing H
	if !IsValidName(name) {
		return missing, false, nil
	}

	entry, cached := directory.cachedEntry(name)
	if cached && !directory.removalPolicy.DetectsRemovals() {
		return entry.handle, true, nil
	}

	if cached {
		stillValid, probeError := directory.isRepositoryDirectory(entry.directoryName)
		if probeError != nil {
			return missing, false, probeError
		}
		if stillValid {
			directory.suffixes.promote(entry.suffix)
			return entry.handle, true, nil
		}
	}

	suffix, matched, resolveError := directory.resolveSuffix(name, entry.suffix, cached)
	if resolveError != nil {
		return missing, false, resolveError
	}
	if !matched {
		if directory.removalPolicy.DetectsRemovals() {
			directory.evict(name)
		}
		return missing, false, nil
	}

	directory.suffixes.promote(suffix)
	return directory.obtain(name, suffix)
}

// Contains reports whether name currently resolves to a repository.
func (directory *Directory[H]) Contains(name string) (bool, error) {
	_, found, lookupError := directory.Lookup(name)
	return found, lookupError
}

// resolveSuffix probes the suffixes in trial order and returns the first one
// whose directory carries the marker. skipSuffix is omitted when skip is set.
func (directory *Directory[H]) resolveSuffix(name string, skipSuffix string, skip bool) (string, bool, error) {
	for _, suffix := range directory.suffixes.snapshot() {
		if skip && suffix == skipSuffix {
			continue
		}
		valid, probeError := directory.isRepositoryDirectory(name + suffix)
		if probeError != nil {
			return "", false, probeError
		}
		if valid {
			return suffix, true, nil
		}
	}
	return "", false, nil
}

func (directory *Directory[H]) isRepositoryDirectory(directoryName string) (bool, error) {
	if directory.markerPath == EveryDirectoryMarkerPath {
		info, statError := directory.fileSystem.Stat(directoryName)
		if statError == nil {
			return info.IsDir(), nil
		}
		if filesystem.IsNotExist(statError) {
			return false, nil
		}
		return false, fmt.Errorf(markerProbeErrorTemplateConstant, directoryName, statError)
	}

	markerPath := directory.fileSystem.Join(directoryName, directory.markerPath)
	exists, existsError := directory.fileSystem.Exists(markerPath)
	if existsError != nil {
		return false, fmt.Errorf(markerProbeErrorTemplateConstant, markerPath, existsError)
	}
	return exists, nil
}

// obtain returns the cached handle for name when it was built from the same
// suffix, constructing and caching a new one otherwise. Concurrent callers
// resolving the same name and suffix share one construction. "foo" with ".git"
// and "foo.git" with "" are distinct cache keys and never share a flight.
func (directory *Directory[H]) obtain(name string, suffix string) (H, bool, error) {
	directoryName := name + suffix
	constructionKey := name + constructionKeySeparatorConstant + suffix
	result, constructionError, _ := directory.constructions.Do(constructionKey, func() (any, error) {
		if entry, cached := directory.cachedEntry(name); cached && entry.suffix == suffix {
			return entry.handle, nil
		}

		repositoryPath := filepath.Join(directory.root, directoryName)
		handle, openError := directory.construct(repositoryPath, directory.namespace)
		if openError != nil {
			return nil, fmt.Errorf(handleConstructionErrorTemplateConstant, repositoryPath, openError)
		}

		directory.store(name, cacheEntry[H]{handle: handle, suffix: suffix, directoryName: directoryName})
		directory.logger.Debug(
			logMessageHandleConstructedConstant,
			zap.String(logFieldRepositoryNameConstant, name),
			zap.String(logFieldRepositoryPathConstant, repositoryPath),
		)
		return handle, nil
	})
	if constructionError != nil {
		var missing H
		return missing, false, constructionError
	}

	handle, _ := result.(H)
	return handle, true, nil
}

func (directory *Directory[H]) cachedEntry(name string) (cacheEntry[H], bool) {
	directory.cacheMutex.Lock()
	defer directory.cacheMutex.Unlock()
	entry, cached := directory.cache[name]
	return entry, cached
}

func (directory *Directory[H]) isCached(name string) bool {
	_, cached := directory.cachedEntry(name)
	return cached
}

func (directory *Directory[H]) store(name string, entry cacheEntry[H]) {
	directory.cacheMutex.Lock()
	defer directory.cacheMutex.Unlock()
	directory.cache[name] = entry
}

func (directory *Directory[H]) evict(name string) {
	directory.cacheMutex.Lock()
	_, cached := directory.cache[name]
	delete(directory.cache, name)
	directory.cacheMutex.Unlock()

	if cached {
		directory.logger.Debug(logMessageHandleEvictedConstant, zap.String(logFieldRepositoryNameConstant, name))
	}
}
