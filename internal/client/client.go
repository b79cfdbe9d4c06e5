// Package client implements the editing client half of spec.md §4-6: it
// holds the authoritative Store's local mirror, uploads source clips and
// project checkpoints, requests rendered previews, and surfaces everything
// observable as Events for a UI layer. Structured as a config struct, a
// dial step, and goroutine-driven read loops, following
// original_source/client/src/{networking,state}.rs for the
// worker-thread/shared-state split this package generalizes into Go
// goroutines and an errgroup.
package client

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ajsmith595/videoedit/internal/logger"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
)

// PollInterval is how often the fetcher, uploader, project-uploader and
// preview-requester workers wake to check for work, mirroring
// original_source's 1-second polling sleep ticks (spec.md §5).
const PollInterval = time.Second

// Config holds the knobs needed to start a Client, mirroring
// internal/videoserver.Config's plain-struct-plus-Start shape. The data
// root itself is set once process-wide via project.Init, not here.
type Config struct {
	ServerAddr string
	EventBuf   int
}

func (c *Config) applyDefaults() {
	if c.EventBuf == 0 {
		c.EventBuf = 64
	}
}

// Client owns one server connection, the local SharedState mirror, and the
// worker goroutines that keep them converged. Start/Stop follow the same
// cancellation-context discipline as internal/videoserver.Server, Go's
// idiomatic replacement for original_source's broadcast "thread stopper"
// channel (spec.md §5).
type Client struct {
	cfg     Config
	log     *slog.Logger
	conn    *Conn
	state   *SharedState
	emitter *Emitter

	cancel context.CancelFunc
	group  *errgroup.Group

	uploadMu sync.Mutex // serializes source-clip uploads, spec.md §5 backpressure: one at a time
}

// New dials the server, loads (or creates) the local Store, and returns an
// unstarted Client.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()

	conn, err := Dial(cfg.ServerAddr)
	if err != nil {
		return nil, err
	}

	store, err := project.FromFile(project.StoreJSONLocation())
	if err != nil {
		store = project.New()
	}

	logger.Init()
	return &Client{
		cfg:     cfg,
		log:     logger.Logger().With("component", "client"),
		conn:    conn,
		state:   NewSharedState(store),
		emitter: NewEmitter(cfg.EventBuf),
	}, nil
}

// Events exposes the client→UI notification stream (spec.md §6.3).
func (c *Client) Events() <-chan Event { return c.emitter.Events() }

// State returns the client's shared mutable model for direct UI reads
// (always taken under SharedState.Lock by the caller).
func (c *Client) State() *SharedState { return c.state }

// Start launches the fetcher, uploader, project-uploader and
// preview-requester workers, plus the checkpoint watcher, all under one
// cancellation context coordinated by errgroup (SPEC_FULL.md §3's explicit
// wiring decision), and emits an initial connection-status event.
func (c *Client) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	c.group = g

	c.emitter.emit(Event{Kind: EventConnectionStatus, Status: Connected})

	g.Go(func() error { return c.fetchLoop(gctx) })
	g.Go(func() error { return c.uploadLoop(gctx) })
	g.Go(func() error { return c.projectUploadLoop(gctx) })
	g.Go(func() error { return c.previewLoop(gctx) })
	g.Go(func() error { return c.watchCheckpoint(gctx) })

	return nil
}

// Stop cancels every worker and waits for them to return, then closes the
// connection.
func (c *Client) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	var waitErr error
	if c.group != nil {
		waitErr = c.group.Wait()
	}
	c.emitter.emit(Event{Kind: EventConnectionStatus, Status: Disconnected})
	if err := c.conn.Close(); err != nil && waitErr == nil {
		waitErr = err
	}
	return waitErr
}

// fetchLoop periodically pulls the server's authoritative Store and merges
// it into SharedState, emitting store-update (spec.md §6.3). original_source
// polls this on the same cadence as every other client worker (spec.md §5).
func (c *Client) fetchLoop(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			store, err := c.conn.GetStore()
			if err != nil {
				c.log.Warn("fetch store failed", "error", err)
				continue
			}
			unlock := c.state.Lock()
			c.state.Store = store
			unlock()
			c.emitter.emit(Event{Kind: EventStoreUpdate})
		}
	}
}

// uploadLoop scans for source clips that only exist locally and uploads
// them one at a time (spec.md §5 backpressure: "one source-clip upload at
// a time"), emitting file-upload-progress as each transfers.
func (c *Client) uploadLoop(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			clipID, path, ok := c.nextPendingUpload()
			if !ok {
				continue
			}
			c.uploadOne(clipID, path)
		}
	}
}

func (c *Client) nextPendingUpload() (media.ID, string, bool) {
	unlock := c.state.Lock()
	defer unlock()
	for id, clip := range c.state.Store.Clips.Source {
		if clip.Status == project.LocalOnly && clip.OriginalFileLocation != nil {
			return id, *clip.OriginalFileLocation, true
		}
	}
	return media.Nil, "", false
}

func (c *Client) uploadOne(clipID media.ID, path string) {
	c.uploadMu.Lock()
	defer c.uploadMu.Unlock()

	unlock := c.state.Lock()
	if clip, ok := c.state.Store.Clips.Source[clipID]; ok {
		clip.Status = project.Uploading
	}
	unlock()

	err := c.conn.UploadFile(clipID, path, func(percent float64, _ int64) {
		c.emitter.emit(Event{Kind: EventFileUploadProgress, ClipID: clipID, Percent: percent})
	})

	unlock = c.state.Lock()
	defer unlock()
	clip, ok := c.state.Store.Clips.Source[clipID]
	if !ok {
		return
	}
	if err != nil {
		c.log.Warn("upload failed", "clip", clipID, "error", err)
		clip.Status = project.LocalOnly
		return
	}
	clip.Status = project.Uploaded
	loc := filepath.Base(path)
	clip.FileLocation = &loc
}

// projectUploadLoop sends SetStore whenever the local Store has unsaved
// mutations (Store.Dirty), streaming back rendered segments and durations
// as the server produces them.
func (c *Client) projectUploadLoop(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !c.storeIsDirty() {
				continue
			}
			c.pushStore()
		}
	}
}

func (c *Client) storeIsDirty() bool {
	unlock := c.state.Lock()
	defer unlock()
	return c.state.Store.Dirty()
}

func (c *Client) pushStore() {
	unlock := c.state.Lock()
	store := c.state.Store
	unlock()

	err := c.conn.SetStore(store,
		func(clipID media.ID, segment uint32, data []byte) {
			c.writeChunk(clipID, segment, data)
			c.emitter.emit(Event{Kind: EventVideoChunkReady, ClipID: clipID, Segment: segment})
		},
		func(clipID media.ID, millis uint64) {
			c.emitter.emit(Event{Kind: EventCompositedClipLength, ClipID: clipID, Millis: millis})
		},
	)
	if err != nil {
		c.log.Warn("push store failed", "error", err)
		return
	}

	unlock = c.state.Lock()
	defer unlock()
	c.state.Store.MarkClean()
}

func (c *Client) writeChunk(clipID media.ID, segment uint32, data []byte) {
	unlock := c.state.Lock()
	clip, ok := c.state.Store.Clips.Composited[clipID]
	unlock()
	if !ok {
		return
	}
	dst := clip.ChunkFileLocation(segment)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		c.log.Warn("create chunk dir failed", "clip", clipID, "error", err)
		return
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		c.log.Warn("write chunk failed", "clip", clipID, "segment", segment, "error", err)
	}
}

// previewLoop polls composited clips whose preview has been Requested,
// coalescing duplicate requests via PreviewStatus transitions (spec.md §5).
func (c *Client) previewLoop(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			clipID, ok := c.nextRequestedPreview()
			if !ok {
				continue
			}
			c.requestPreview(clipID)
		}
	}
}

func (c *Client) nextRequestedPreview() (media.ID, bool) {
	unlock := c.state.Lock()
	defer unlock()
	for id, status := range c.state.Previews {
		if status == PreviewRequested {
			c.state.Previews[id] = PreviewRequesting
			return id, true
		}
	}
	return media.Nil, false
}

func (c *Client) requestPreview(clipID media.ID) {
	ms, err := c.conn.RequestCompositedClipLength(clipID)
	unlock := c.state.Lock()
	defer unlock()
	if err != nil {
		c.log.Warn("preview request failed", "clip", clipID, "error", err)
		c.state.Previews[clipID] = PreviewRequested
		return
	}
	c.state.Previews[clipID] = PreviewDownloaded
	c.emitter.emit(Event{Kind: EventCompositedClipLength, ClipID: clipID, Millis: ms})
}

// RequestPreview marks a composited clip as wanting a fresh preview,
// dropping the request if one is already in flight (spec.md §5
// "duplicates dropped").
func (c *Client) RequestPreview(clipID media.ID) {
	unlock := c.state.Lock()
	defer unlock()
	if status, ok := c.state.Previews[clipID]; ok && status != PreviewDownloaded {
		return
	}
	c.state.Previews[clipID] = PreviewRequested
}
