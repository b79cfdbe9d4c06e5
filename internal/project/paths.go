// Package project holds the Store: the persisted graph of nodes, links and
// clips that a compile pass reads and a task apply mutates (spec.md §3, §4.6).
package project

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

// ChunkLengthSeconds is the duration of one rendered segment (spec.md §4.7).
const ChunkLengthSeconds = 10

// ChunkFilenameDigits is the zero-padded width of a segment's numeric suffix.
const ChunkFilenameDigits = 6

var (
	dataRoot   atomic.Pointer[string]
	isServer   atomic.Bool
	initOnce   sync.Once
	initCalled atomic.Bool
)

// Init sets the data root directory and server/client mode, and creates the
// on-disk directory layout spec.md §6.1 describes. Safe to call once per
// process; subsequent calls are no-ops.
func Init(root string, server bool) error {
	var err error
	initOnce.Do(func() {
		dataRoot.Store(&root)
		isServer.Store(server)
		initCalled.Store(true)
		for _, dir := range []string{
			MediaOutputLocation(),
			SourceFilesLocation(),
			TempLocation(),
			ProjectsLocation(),
			IntermediateFilesLocation(),
			CompositedClipsProjectsLocation(),
			CacheFilesLocation(),
		} {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				err = fmt.Errorf("project.Init: %w", mkErr)
				return
			}
		}
	})
	return err
}

// DataLocation returns the configured data root directory.
func DataLocation() string {
	p := dataRoot.Load()
	if p == nil {
		panic("project.DataLocation: called before Init")
	}
	return *p
}

// IsServer reports whether this process is running in server mode.
func IsServer() bool {
	return isServer.Load()
}

// MediaOutputLocation is where rendered composited-clip segments are written.
func MediaOutputLocation() string {
	return DataLocation() + "/output"
}

// SourceFilesLocation is where uploaded source-clip media files live.
func SourceFilesLocation() string {
	return DataLocation() + "/source"
}

// StoreJSONLocation is the Store's persisted JSON checkpoint file.
func StoreJSONLocation() string {
	return DataLocation() + "/pipeline.json"
}

// TempLocation is the root of all scratch/derived data.
func TempLocation() string {
	return DataLocation() + "/temp"
}

// ProjectsLocation is where per-project client-side checkpoints live.
func ProjectsLocation() string {
	return TempLocation() + "/projects"
}

// IntermediateFilesLocation is where a compile pass's edge artifacts land.
func IntermediateFilesLocation() string {
	return TempLocation() + "/intermediate"
}

// CompositedClipsProjectsLocation is where server-side composited-clip
// timeline files live.
func CompositedClipsProjectsLocation() string {
	return IntermediateFilesLocation() + "/composited-clips"
}

// CacheFilesLocation is where content-addressed cached artifacts live.
func CacheFilesLocation() string {
	return DataLocation() + "/cache"
}
