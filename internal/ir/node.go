// Package ir is the intermediate pipeline representation the graph compiler
// emits and the render backend consumes: a flat set of named elements and
// links that reduces, after a fixed sequence of transform passes, to the
// linear element chain a media backend is driven with (spec.md §4.2's
// "intermediate pipeline").
package ir

import (
	"fmt"
	"strings"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/google/uuid"
)

// NewNodeID generates a fresh IR node id. IR node ids are plain strings
// (not media.ID) because alias expansion and splitter insertion synthesize
// many ids per compile that never need to round-trip through JSON or the
// wire protocol.
func NewNodeID() string {
	return uuid.NewString()
}

// Node is one element in the intermediate pipeline: a named instance of a
// backend element kind with string-valued properties.
type Node struct {
	ID         string
	Kind       string
	Properties map[string]string
}

// NewNode constructs a Node of the given kind with a fresh id.
func NewNode(kind string) *Node {
	return &Node{ID: NewNodeID(), Kind: kind, Properties: map[string]string{}}
}

// NewNodeWithID constructs a Node of the given kind with an explicit id.
func NewNodeWithID(kind, id string) *Node {
	return &Node{ID: id, Kind: kind, Properties: map[string]string{}}
}

// NewNodeWithProps constructs a Node of the given kind carrying the given
// properties, with a fresh id.
func NewNodeWithProps(kind string, props map[string]string) *Node {
	return &Node{ID: NewNodeID(), Kind: kind, Properties: props}
}

// encoderKind and decoderKind format the alias type string for a stream
// kind, e.g. "encoder:video".
func encoderKind(k media.StreamKind) string { return "encoder:" + k.String() }
func decoderKind(k media.StreamKind) string { return "decoder:" + k.String() }

// NewEncoder constructs an aliased encoder placeholder node for the given
// stream kind, to be expanded by convertAliases.
func NewEncoder(k media.StreamKind) *Node {
	return &Node{ID: NewNodeID(), Kind: encoderKind(k), Properties: map[string]string{}}
}

// NewEncoderWithProps is NewEncoder with initial properties.
func NewEncoderWithProps(k media.StreamKind, props map[string]string) *Node {
	return &Node{ID: NewNodeID(), Kind: encoderKind(k), Properties: props}
}

// NewDecoder constructs an aliased decoder placeholder node for the given
// stream kind, to be expanded by convertAliases.
func NewDecoder(k media.StreamKind) *Node {
	return &Node{ID: NewNodeID(), Kind: decoderKind(k), Properties: map[string]string{}}
}

// NewDecoderWithProps is NewDecoder with initial properties.
func NewDecoderWithProps(k media.StreamKind, props map[string]string) *Node {
	return &Node{ID: NewNodeID(), Kind: decoderKind(k), Properties: props}
}

// ToPipelineText renders this node's element description line, e.g.
// `videoconvert name=n1 foo=bar`.
func (n *Node) ToPipelineText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s name=%s", n.Kind, n.ID)
	for prop, value := range n.Properties {
		fmt.Fprintf(&b, " %s=%s", prop, value)
	}
	return b.String()
}

// IsLinker reports whether this node is one of the stream-kind converter
// elements that a fan-out (>1 outgoing link) must be split through.
func (n *Node) IsLinker() bool {
	switch n.Kind {
	case "videoconvert", "audioconvert", "subparse":
		return true
	default:
		return false
	}
}

// LinkerKind returns the stream kind a linker node converts. Panics if
// called on a non-linker node — callers must check IsLinker first.
func (n *Node) LinkerKind() media.StreamKind {
	switch n.Kind {
	case "videoconvert":
		return media.Video
	case "audioconvert":
		return media.Audio
	case "subparse":
		return media.Subtitles
	default:
		panic("ir: LinkerKind called on non-linker node " + n.Kind)
	}
}

// IsEncoder reports whether this node is an unexpanded "encoder:<kind>"
// alias.
func (n *Node) IsEncoder() bool { return strings.HasPrefix(n.Kind, "encoder:") }

// IsDecoder reports whether this node is an unexpanded "decoder:<kind>"
// alias.
func (n *Node) IsDecoder() bool { return strings.HasPrefix(n.Kind, "decoder:") }

// IsAliased reports whether this node is an encoder or decoder alias that
// convertAliases must expand before the pipeline can be rendered.
func (n *Node) IsAliased() bool { return n.IsEncoder() || n.IsDecoder() }

// aliasStreamKind parses the "<video|audio|subtitles>" suffix of an
// "encoder:"/"decoder:" alias kind string.
func (n *Node) aliasStreamKind() media.StreamKind {
	parts := strings.SplitN(n.Kind, ":", 2)
	switch parts[1] {
	case "video":
		return media.Video
	case "audio":
		return media.Audio
	case "subtitles":
		return media.Subtitles
	default:
		panic("ir: cannot determine stream kind of alias " + n.Kind)
	}
}

// AliasToPipeline expands an encoder/decoder alias node into its concrete
// backend element chain, returning the expansion, and the ids of its entry
// and exit elements (the points a caller rewires existing links to).
func (n *Node) AliasToPipeline() (pipeline *Pipeline, entryID, exitID string) {
	if !n.IsAliased() {
		panic("ir: AliasToPipeline called on non-aliased node " + n.Kind)
	}
	kind := n.aliasStreamKind()
	p := New()

	if n.IsEncoder() {
		switch kind {
		case media.Video:
			enc := NewNodeWithProps("nvh264enc", map[string]string{"bitrate": "400"})
			parse := NewNode("h264parse")
			p.Link(enc, parse)
			p.AddNode(enc)
			p.AddNode(parse)
			return p, enc.ID, parse.ID
		case media.Audio:
			enc := NewNode("avenc_aac")
			p.AddNode(enc)
			return p, enc.ID, enc.ID
		default:
			panic("ir: subtitle encoding is not implemented")
		}
	}

	switch kind {
	case media.Video:
		parse := NewNode("h264parse")
		dec := NewNode("nvh264dec")
		p.Link(parse, dec)
		p.AddNode(parse)
		p.AddNode(dec)
		return p, parse.ID, dec.ID
	case media.Audio:
		dec := NewNode("avdec_aac")
		conv := NewNode("audioconvert")
		resample := NewNode("audioresample")
		p.Link(dec, conv)
		p.Link(conv, resample)
		p.AddNode(dec)
		p.AddNode(conv)
		p.AddNode(resample)
		return p, dec.ID, resample.ID
	default:
		panic("ir: subtitle decoding is not implemented")
	}
}
