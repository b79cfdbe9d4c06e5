// Package videoserver accepts wire-protocol connections from editing
// clients, owns the authoritative Store/Cache/render pool, and dispatches
// each incoming tag to the matching handler (spec.md §4.6 "Wire protocol",
// §6.2). Structured as Config/Server/accept-loop/Stop, following
// original_source/server/src/main.rs and state.rs for the
// authoritative-state and per-connection-thread shape.
package videoserver

import (
	"sync"

	"github.com/ajsmith595/videoedit/internal/cache"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
	"github.com/ajsmith595/videoedit/internal/renderpool"
)

// State is the server's single shared mutable model: the Store, its
// dependency cache, the node registry and the render-worker pool. Guarded
// by one coarse mutex, per spec.md §5's "Shared resource policy" (a single
// coarse mutex around the server's State, matching original_source's
// `Arc<Mutex<State>>`).
type State struct {
	mu sync.Mutex

	Store    *project.Store
	Cache    *cache.Cache
	Registry *registry.Registry
	Pool     *renderpool.Pool

	// Durations records the last CompositedClipLength reported by a render
	// worker for each clip, answering a client's later CompositedClipLength
	// lookup without re-rendering (spec.md §6.2).
	Durations map[media.ID]uint64
}

// NewState builds a State from an already-loaded Store and worker pool.
func NewState(store *project.Store, pool *renderpool.Pool) *State {
	return &State{
		Store:     store,
		Cache:     cache.New(),
		Registry:  registry.New(),
		Pool:      pool,
		Durations: map[media.ID]uint64{},
	}
}

// Lock acquires the state mutex and returns the function that releases it.
// The dispatch handlers call it as soon as they have read or mutated the
// state, before their blocking I/O (the discipline of spec.md §5);
// Checkpoint defers it.
func (s *State) Lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// Checkpoint persists the Store to its on-disk JSON checkpoint if it has
// pending changes, clearing the dirty bit on success. Mirrors
// original_source's periodic `state.json` save.
func (s *State) Checkpoint(path string) error {
	unlock := s.Lock()
	defer unlock()
	if !s.Store.Dirty() {
		return nil
	}
	return s.Store.WriteFile(path)
}
