package videoserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/ajsmith595/videoedit/internal/compiler"
	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/logger"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/renderpool"
	"github.com/ajsmith595/videoedit/internal/tasks"
	"github.com/ajsmith595/videoedit/internal/wire"
)

// handleConn runs one connection's dispatch loop, reading a tag and its
// payload, applying it against state, and replying, until the peer closes
// the socket or a framing error occurs (spec.md §4.6, §7's ProtocolShort/
// ProtocolInvalid policy: close the connection). One goroutine per
// connection, reading the flat tag-dispatch protocol of spec.md §6.2.
func handleConn(conn net.Conn, state *State, log *slog.Logger) {
	log = log.With("remote", conn.RemoteAddr().String())
	for {
		tag, err := wire.ReadTag(conn)
		if err != nil {
			if err != io.EOF {
				log.Debug("connection closed", "error", err)
			}
			return
		}

		frameLog := logger.WithFrame(log, tag.String(), 0)
		if err := dispatch(tag, conn, state, frameLog); err != nil {
			frameLog.Warn("dispatch error, closing connection", "error", err)
			return
		}
	}
}

func dispatch(tag wire.Tag, conn net.Conn, state *State, log *slog.Logger) error {
	switch tag {
	case wire.TagGetStore:
		return handleGetStore(conn, state)
	case wire.TagSetStore:
		return handleSetStore(conn, state, log)
	case wire.TagUploadFile:
		return handleUploadFile(conn, state)
	case wire.TagCompositedClipLength:
		return handleCompositedClipLength(conn, state)
	case wire.TagCreateSourceClip:
		return handleTask(conn, state, &tasks.CreateSourceClipTask{})
	case wire.TagCreateCompositedClip:
		return handleTask(conn, state, &tasks.CreateCompositedClipTask{})
	case wire.TagCreateNode:
		return handleTask(conn, state, &tasks.AddNodeTask{})
	case wire.TagUpdateNode:
		return handleTask(conn, state, &tasks.UpdateNodeTask{})
	case wire.TagAddLink:
		return handleTask(conn, state, &tasks.AddLinkTask{})
	case wire.TagDeleteLinks:
		return handleTask(conn, state, &tasks.DeleteLinksTask{})
	case wire.TagUpdateClip:
		return handleTask(conn, state, &tasks.UpdateClipTask{})
	case wire.TagDeleteNode:
		return handleTask(conn, state, &tasks.DeleteNodeTask{})
	default:
		return errors.NewProtocolError("videoserver.dispatch", fmt.Errorf("tag %s not handled by this connection", tag))
	}
}

// handleGetStore answers a store snapshot request with its length-prefixed
// JSON encoding, per spec.md §6.2 "GetStore: server→client. Response:
// 8-byte length + JSON bytes."
func handleGetStore(conn net.Conn, state *State) error {
	unlock := state.Lock()
	data, err := json.Marshal(state.Store)
	unlock()
	if err != nil {
		return errors.NewStoreError("videoserver.handleGetStore", err)
	}
	return wire.WriteBlob(conn, data)
}

// handleSetStore replaces the authoritative Store with the client's
// upload, compiles it, and streams back rendered segments as they become
// available (spec.md §6.2 "SetStore"). The render backend itself is the
// external black-box process in internal/renderpool; this handler only
// translates its IPC events into wire frames.
func handleSetStore(conn net.Conn, state *State, log *slog.Logger) error {
	data, err := wire.ReadBlob(conn)
	if err != nil {
		return err
	}

	var next project.Store
	if err := json.Unmarshal(data, &next); err != nil {
		return errors.NewStoreError("videoserver.handleSetStore", err)
	}

	unlock := state.Lock()
	*state.Store = next
	state.Store.MarkDirty()
	result, compileErr := compiler.Compile(state.Store, state.Registry, state.Cache, true)
	unlock()
	if compileErr != nil {
		return errors.NewGraphError("videoserver.handleSetStore", compileErr)
	}

	for clipID := range result.CompositedClipTypes {
		if err := renderClip(conn, state, clipID, log); err != nil {
			log.Warn("render clip failed", "clip", clipID, "error", err)
		}
	}

	return wire.WriteTag(conn, wire.TagResponse)
}

// renderClip acquires one worker, asks it to render clipID end-to-end, and
// relays its IPC events to the client as NewChunk/CompositedClipLength/
// AllChunksGenerated frames, releasing the worker when done. Mirrors
// spec.md §4.7's per-worker protocol and §5's ordering guarantee
// (CompositedClipLength precedes any ChunkCompleted; ChunksCompleted
// terminates the sequence).
func renderClip(conn net.Conn, state *State, clipID media.ID, log *slog.Logger) error {
	log = logger.WithClip(log, clipID.String())
	unlock := state.Lock()
	clip, ok := state.Store.Clips.Composited[clipID]
	unlock()
	if !ok {
		return errors.NewStoreError("videoserver.renderClip", fmt.Errorf("no composited clip %s", clipID))
	}

	w, err := state.Pool.Acquire()
	if err != nil {
		return err
	}
	defer state.Pool.Release(w)

	if err := w.Send(renderpool.GeneratePreview{Clip: *clip}); err != nil {
		return err
	}

	for {
		msg, err := w.Recv()
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case renderpool.CompositedClipLength:
			unlock := state.Lock()
			state.Durations[m.ClipID] = m.DurationMillis
			unlock()
			if err := wire.WriteTag(conn, wire.TagCompositedClipLength); err != nil {
				return err
			}
			if err := wire.WriteID(conn, m.ClipID); err != nil {
				return err
			}
			if err := wire.WriteUint64(conn, m.DurationMillis); err != nil {
				return err
			}
		case renderpool.ChunkCompleted:
			if err := sendChunk(conn, clip, m); err != nil {
				return err
			}
		case renderpool.ChunksCompleted:
			if err := wire.WriteTag(conn, wire.TagAllChunksGenerated); err != nil {
				return err
			}
			if err := wire.WriteID(conn, m.ClipID); err != nil {
				return err
			}
			if err := wire.WriteUint32(conn, m.StartChunk); err != nil {
				return err
			}
			if err := wire.WriteUint32(conn, m.EndChunk); err != nil {
				return err
			}
		case renderpool.OperationFinished:
			return nil
		default:
			return errors.NewProtocolError("videoserver.renderClip", fmt.Errorf("unexpected worker message %T", m))
		}
	}
}

func sendChunk(conn net.Conn, clip *project.CompositedClip, m renderpool.ChunkCompleted) error {
	path := fmt.Sprintf(clip.OutputLocationTemplate(), m.Segment)
	segment, err := os.ReadFile(path)
	if err != nil {
		return errors.NewIOError("videoserver.sendChunk", err)
	}
	if err := wire.WriteTag(conn, wire.TagNewChunk); err != nil {
		return err
	}
	if err := wire.WriteID(conn, m.ClipID); err != nil {
		return err
	}
	if err := wire.WriteUint32(conn, m.Segment); err != nil {
		return err
	}
	return wire.WriteBlob(conn, segment)
}

// handleUploadFile receives a source clip's media bytes and marks the
// clip uploaded, per spec.md §6.2 "UploadFile: client→server. Payload:
// 16-byte clip id, then 8-byte length, then file bytes, then EndFile."
func handleUploadFile(conn net.Conn, state *State) error {
	id, err := wire.ReadID(conn)
	if err != nil {
		return err
	}

	dest := project.SourceFilesLocation() + "/" + id.String()
	f, err := os.Create(dest)
	if err != nil {
		return errors.NewIOError("videoserver.handleUploadFile", err)
	}
	defer f.Close()

	if err := wire.ReadFile(conn, f); err != nil {
		return err
	}

	end, err := wire.ReadTag(conn)
	if err != nil {
		return err
	}
	if end != wire.TagEndFile {
		return errors.NewProtocolError("videoserver.handleUploadFile", fmt.Errorf("expected EndFile, got %s", end))
	}

	unlock := state.Lock()
	if clip, ok := state.Store.Clips.Source[id]; ok {
		loc := dest
		clip.FileLocation = &loc
		clip.Status = project.Uploaded
	}
	unlock()
	return nil
}

// handleCompositedClipLength answers a duration lookup, per spec.md §6.2:
// "16-byte clip id request → 16-byte id + 8-byte ms response."
func handleCompositedClipLength(conn net.Conn, state *State) error {
	id, err := wire.ReadID(conn)
	if err != nil {
		return err
	}

	unlock := state.Lock()
	ms := state.Durations[id]
	unlock()

	if err := wire.WriteID(conn, id); err != nil {
		return err
	}
	return wire.WriteUint64(conn, ms)
}

// handleTask decodes a length-prefixed JSON task payload into dst, applies
// it as a single-element batch, and replies with the resulting
// NetworkTasks JSON-encoded, mirroring spec.md §4.5/§4.6: the dispatcher
// reads a tag, switches on kind, and the task applier's output is an
// ordered NetworkTask list for mirror-side replay.
func handleTask[T tasks.Task](conn net.Conn, state *State, dst *T) error {
	data, err := wire.ReadBlob(conn)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.NewStoreError("videoserver.handleTask", err)
	}

	unlock := state.Lock()
	result := tasks.Apply(state.Store, state.Cache, []tasks.Task{*dst})
	unlock()

	reply, err := json.Marshal(result)
	if err != nil {
		return errors.NewStoreError("videoserver.handleTask", err)
	}
	return wire.WriteBlob(conn, reply)
}
