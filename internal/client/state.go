package client

import (
	"sync"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
)

// PreviewStatus tracks one composited clip's preview-request lifecycle, so
// duplicate requests while one is already in flight are dropped (spec.md
// §5 "Backpressure": coalesced by status transitions Requested →
// Requesting → Downloading → Downloaded).
type PreviewStatus int

const (
	PreviewRequested PreviewStatus = iota
	PreviewRequesting
	PreviewDownloading
	PreviewDownloaded
)

// SharedState is the client's single shared mutable model, guarded by one
// coarse mutex per spec.md §5 ("the client's SharedState ... protected by
// a single coarse mutex"), mirroring internal/videoserver.State's server-
// side counterpart.
type SharedState struct {
	mu sync.Mutex

	Store    *project.Store
	Previews map[media.ID]PreviewStatus
}

// NewSharedState wraps an already-loaded Store.
func NewSharedState(store *project.Store) *SharedState {
	return &SharedState{Store: store, Previews: map[media.ID]PreviewStatus{}}
}

// Lock acquires the state mutex and returns the function that releases it,
// like internal/videoserver.State's Lock.
func (s *SharedState) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}
