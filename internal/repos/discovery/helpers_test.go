package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitshelf/internal/repos/filesystem"
)

const (
	testRootDirectoryConstant        = "/srv/git"
	testNamespaceConstant            = "mirror"
	testMarkerFileNameConstant       = "git-daemon-export-ok"
	testDirectoryPermissionsConstant = 0o755
)

type testHandle struct {
	path      string
	namespace string
	serial    int64
}

type handleRecorder struct {
	constructions atomic.Int64
	failure       error
}

func (recorder *handleRecorder) construct(path string, namespace string) (*testHandle, error) {
	if recorder.failure != nil {
		return nil, recorder.failure
	}
	serial := recorder.constructions.Add(1)
	return &testHandle{path: path, namespace: namespace, serial: serial}, nil
}

// probeCountingFileSystem counts existence and stat probes issued by a Directory.
type probeCountingFileSystem struct {
	*filesystem.BillyFileSystem
	mutex  sync.Mutex
	probes int
}

func newProbeCountingFileSystem(memoryFileSystem billy.Filesystem) *probeCountingFileSystem {
	return &probeCountingFileSystem{BillyFileSystem: filesystem.NewBillyFileSystem(memoryFileSystem)}
}

func (counting *probeCountingFileSystem) Exists(path string) (bool, error) {
	counting.record()
	return counting.BillyFileSystem.Exists(path)
}

func (counting *probeCountingFileSystem) Stat(path string) (fs.FileInfo, error) {
	counting.record()
	return counting.BillyFileSystem.Stat(path)
}

func (counting *probeCountingFileSystem) record() {
	counting.mutex.Lock()
	defer counting.mutex.Unlock()
	counting.probes++
}

func (counting *probeCountingFileSystem) reset() {
	counting.mutex.Lock()
	defer counting.mutex.Unlock()
	counting.probes = 0
}

func (counting *probeCountingFileSystem) count() int {
	counting.mutex.Lock()
	defer counting.mutex.Unlock()
	return counting.probes
}

// failingFileSystem reports probeError for every probe.
type failingFileSystem struct {
	probeError error
}

func (failing failingFileSystem) Exists(string) (bool, error) {
	return false, failing.probeError
}

func (failing failingFileSystem) Stat(string) (fs.FileInfo, error) {
	return nil, failing.probeError
}

func (failing failingFileSystem) ReadDir(string) ([]fs.FileInfo, error) {
	return nil, failing.probeError
}

func (failing failingFileSystem) Join(elements ...string) string {
	return filepath.Join(elements...)
}

var errPermissionDenied = errors.New("permission denied")

func createRepositoryDirectory(testInstance *testing.T, memoryFileSystem billy.Filesystem, directoryName string, withMarker bool) {
	testInstance.Helper()
	require.NoError(testInstance, memoryFileSystem.MkdirAll(directoryName, testDirectoryPermissionsConstant))
	if !withMarker {
		return
	}
	markerFile, createError := memoryFileSystem.Create(memoryFileSystem.Join(directoryName, testMarkerFileNameConstant))
	require.NoError(testInstance, createError)
	require.NoError(testInstance, markerFile.Close())
}

func removeMarker(testInstance *testing.T, memoryFileSystem billy.Filesystem, directoryName string) {
	testInstance.Helper()
	require.NoError(testInstance, memoryFileSystem.Remove(memoryFileSystem.Join(directoryName, testMarkerFileNameConstant)))
}

func newTestDirectory(memoryFileSystem billy.Filesystem, recorder *handleRecorder, options Options) (*Directory[*testHandle], *probeCountingFileSystem) {
	countingFileSystem := newProbeCountingFileSystem(memoryFileSystem)
	directory := NewDirectory(testRootDirectoryConstant, countingFileSystem, recorder.construct, options)
	return directory, countingFileSystem
}

func collectNames(testInstance *testing.T, directory *Directory[*testHandle]) []string {
	testInstance.Helper()
	var names []string
	for name, iterationError := range directory.Names() {
		require.NoError(testInstance, iterationError)
		names = append(names, name)
	}
	return names
}

func newMemoryFileSystem() billy.Filesystem {
	return memfs.New()
}
