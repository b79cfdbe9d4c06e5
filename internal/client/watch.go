package client

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ajsmith595/videoedit/internal/project"
)

// watchCheckpoint watches the local pipeline.json checkpoint file for
// external edits (e.g. a companion process or a restored backup writing it
// directly) and reloads SharedState.Store when one lands, emitting
// store-update (spec.md §6.1, §6.3). Follows fsnotify's own documented
// NewWatcher/Events/Errors usage pattern (see DESIGN.md's internal/client
// entry).
func (c *Client) watchCheckpoint(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.log.Warn("checkpoint watcher unavailable", "error", err)
		return nil
	}
	defer watcher.Close()

	path := project.StoreJSONLocation()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		c.log.Warn("checkpoint watch failed", "error", err)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c.reloadCheckpoint(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("checkpoint watcher error", "error", err)
		}
	}
}

func (c *Client) reloadCheckpoint(path string) {
	store, err := project.FromFile(path)
	if err != nil {
		c.log.Warn("checkpoint reload failed", "error", err)
		return
	}
	unlock := c.state.Lock()
	c.state.Store = store
	unlock()
	c.emitter.emit(Event{Kind: EventStoreUpdate})
}
