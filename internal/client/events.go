package client

import "github.com/ajsmith595/videoedit/internal/media"

// EventKind discriminates the client→UI observed events spec.md §6.3
// enumerates.
type EventKind int

const (
	EventStoreUpdate EventKind = iota
	EventFileUploadProgress
	EventConnectionStatus
	EventVideoChunkReady
	EventNewClipCodec
	EventCompositedClipLength
	EventGeneratedPreview
)

// ConnectionStatus is EventConnectionStatus's payload shape, mirroring
// original_source's connection-status variants.
type ConnectionStatus int

const (
	Connected ConnectionStatus = iota
	Disconnected
	InitialConnectionFailed
)

// Event is one client→UI notification. Only the fields relevant to Kind
// are populated: a small tagged-union payload delivered over an
// in-process channel rather than a webhook/script sink, since this
// protocol has no external hook surface to call out to.
type Event struct {
	Kind EventKind

	ClipID  media.ID
	Percent float64
	Segment uint32
	Codec   string
	Millis  uint64
	Status  ConnectionStatus
	Message string

	OutputDirectory string
	SegmentDuration int
}

// Emitter fans Events out to one buffered channel a UI layer drains.
// Sends never block the worker producing them: a full channel drops the
// event rather than stalling a render/upload loop, since these are
// best-effort UI notifications, not a control-flow channel.
type Emitter struct {
	events chan Event
}

// NewEmitter returns an Emitter with the given channel buffer size.
func NewEmitter(buffer int) *Emitter {
	return &Emitter{events: make(chan Event, buffer)}
}

// Events returns the read side of the event channel for a UI to range over.
func (e *Emitter) Events() <-chan Event { return e.events }

func (e *Emitter) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}
