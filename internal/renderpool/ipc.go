// Package renderpool manages a pool of out-of-process render workers: the
// media backend itself is an external black box (spec.md §1's "treated as a
// black-box that consumes a textual pipeline description and emits
// fragment-closed events"), so this package only owns process lifecycle,
// the IPC message vocabulary, and LIFO acquire/release pool semantics
// (spec.md §2's "Render-process pool"). Grounded on
// original_source/server/src/gst_process.rs.
package renderpool

import (
	"encoding/gob"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
)

// Message is one IPC frame exchanged with a render worker, mirroring
// original_source's IPCMessage enum (gst_process.rs). Each variant is a
// concrete struct implementing the marker method, the same sealed-interface
// pattern internal/tasks and internal/errors already use for Rust enums.
type Message interface{ isMessage() }

// GeneratePreview asks a worker to render clip between startChunk and
// endChunk (inclusive), producing outputType's declared streams.
type GeneratePreview struct {
	Clip       project.CompositedClip
	OutputType media.PipedType
	StartChunk uint32
	EndChunk   uint32
}

// CompositedClipLength reports a clip's total duration once its timeline is
// known, before any chunk has finished encoding.
type CompositedClipLength struct {
	ClipID         media.ID
	DurationMillis uint64
}

// ChunkCompleted reports that one segment file has been finalized (a
// splitmuxsink-fragment-closed event in the original).
type ChunkCompleted struct {
	ClipID  media.ID
	Segment uint32
}

// ChunksCompleted reports that every requested chunk in [StartChunk,
// EndChunk] has been produced and the worker pipeline has reached EOS.
type ChunksCompleted struct {
	ClipID     media.ID
	StartChunk uint32
	EndChunk   uint32
}

// OperationFinished is sent by a worker after handling one request,
// signalling it is idle and may be released back to the pool.
type OperationFinished struct{}

// EndProcess asks a worker to exit its message loop and terminate.
type EndProcess struct{}

func (GeneratePreview) isMessage()      {}
func (CompositedClipLength) isMessage() {}
func (ChunkCompleted) isMessage()       {}
func (ChunksCompleted) isMessage()      {}
func (OperationFinished) isMessage()    {}
func (EndProcess) isMessage()           {}

func init() {
	gob.Register(GeneratePreview{})
	gob.Register(CompositedClipLength{})
	gob.Register(ChunkCompleted{})
	gob.Register(ChunksCompleted{})
	gob.Register(OperationFinished{})
	gob.Register(EndProcess{})
}
