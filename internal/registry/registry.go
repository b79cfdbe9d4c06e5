// Package registry implements the node-kind table the graph compiler
// consults to resolve a node's output types and emit its intermediate
// pipeline fragment (spec.md §3 "Node registry", §4.2 "Emit").
//
// original_source/shared/src/nodes lands on two incompatible emission
// models depending on when each file was last touched: media_import_node.rs,
// volume_node.rs and concat_node.rs build a ges::Timeline directly, while
// blur_node.rs and output_node.rs (and the dead audio_gain_node.rs) build an
// AbstractPipeline — the flat node/link IR this package already has as
// internal/ir. There is no Go binding for GStreamer Editing Services,
// so every node kind here standardizes on internal/ir: the GES-based nodes'
// Rust code is read for WHAT they build (which elements, which properties),
// and re-expressed as the IR element chain an equivalent gst-launch-style
// pipeline would describe, following the shape blur_node.rs/output_node.rs
// already use.
package registry

import (
	"fmt"

	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/ir"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
)

// OutputProperty is the property name every node kind's single pipeable
// output is addressed by. Only blur_node.rs's cache.rs test confirms a
// concrete output-property constant ("output", via blur_node::outputs::OUTPUT);
// the other four kinds' own output constants weren't present in the
// retrieved pack, so this name is applied uniformly across all of them
// rather than guessing a different name per kind.
const OutputProperty = "output"

// Context carries everything a node kind's ResolveIO/Emit needs: its own
// id and properties, the resolved PipedType of each input that is actually
// piped, the stream counts already published for every composited clip in
// the current compile (a node can reference a composited clip that hasn't
// rendered yet), and the Store it was materialized from.
type Context struct {
	NodeID              media.ID
	Properties          map[string]any
	PipedInputs         map[string]media.PipedType
	CompositedClipTypes map[media.ID]media.StreamCounts
	Store               *project.Store
}

// Kind is the per-node-kind contract, mirroring original_source's
// NodeType{get_io, get_output} function-pointer pair.
type Kind interface {
	// ID is the registered kind string stored in project.Node.NodeType.
	ID() string
	DisplayName() string
	Description() string

	// DefaultInputs lists this kind's declared inputs before any are piped,
	// used to populate a freshly-placed node and to validate property names.
	DefaultInputs() []media.TypedInput

	// ResolveIO resolves this node's output stream counts given which
	// inputs are actually piped, mirroring original_source's get_io.
	ResolveIO(ctx Context) (media.StreamCounts, error)

	// Emit builds this node's intermediate pipeline fragment, mirroring
	// original_source's get_output. Only called once ResolveIO has
	// succeeded for this node and every node it depends on.
	Emit(ctx Context) (*ir.Pipeline, error)
}

// Registry is the set of node kinds a compile pass may reference by name.
type Registry struct {
	kinds map[string]Kind
}

// New returns a Registry pre-populated with every node kind this package
// implements, mirroring original_source's get_node_register().
func New() *Registry {
	r := &Registry{kinds: map[string]Kind{}}
	for _, k := range []Kind{
		clipImportKind{},
		outputKind{},
		concatKind{},
		blurKind{},
		volumeKind{},
	} {
		r.kinds[k.ID()] = k
	}
	return r
}

// Lookup returns the registered Kind for a node type string.
func (r *Registry) Lookup(nodeType string) (Kind, error) {
	k, ok := r.kinds[nodeType]
	if !ok {
		return nil, errors.NewGraphError("registry.Lookup", fmt.Errorf("unregistered node type %q", nodeType))
	}
	return k, nil
}

// All returns every registered kind, e.g. for a client's node palette.
func (r *Registry) All() []Kind {
	out := make([]Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	return out
}

// getClipIdentifier parses the `clip` property shared by clip_import and
// output into a project.ClipIdentifier, mirroring original_source's
// get_clip_identifier helper (shared across nodes/media_import_node.rs and
// nodes/output_node.rs).
func getClipIdentifier(properties map[string]any) (project.ClipIdentifier, error) {
	raw, ok := properties["clip"]
	if !ok {
		return project.ClipIdentifier{}, fmt.Errorf("no clip given")
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return project.ClipIdentifier{}, fmt.Errorf("clip identifier is malformed")
	}
	idStr, _ := m["id"].(string)
	id, err := media.ParseID(idStr)
	if err != nil {
		return project.ClipIdentifier{}, fmt.Errorf("clip identifier is malformed: %w", err)
	}
	kindStr, _ := m["clip_type"].(string)
	var clipType project.ClipType
	switch kindStr {
	case "source":
		clipType = project.ClipSource
	case "composited":
		clipType = project.ClipComposited
	default:
		return project.ClipIdentifier{}, fmt.Errorf("clip identifier is malformed")
	}
	return project.ClipIdentifier{ID: id, ClipType: clipType}, nil
}

// passthrough wires one queue element per stream of kind that `media`
// carries, named at `output`'s handle for that stream and linked from
// media's handle, so a downstream consumer sees an unbroken chain even
// though this node kind does nothing to that stream. This is the Go
// equivalent of original_source's PipedType::gst_transfer_pipe_type, a
// method referenced throughout blur_node.rs and audio_gain_node.rs but
// whose definition was not present in any retrieved source file; this
// shape is reconstructed from its call sites, which always pass an input
// and output PipedType for a single stream kind and expect a 1:1 pass of
// every stream of that kind from one to the other.
func passthrough(from, to media.PipedType, kind media.StreamKind) *ir.Pipeline {
	p := ir.New()
	count := from.Counts.Of(kind)
	for i := 0; i < count; i++ {
		q := ir.NewNodeWithID("queue", to.GSTHandle(kind, i))
		p.AddNode(q)
		p.LinkEndpoints(ir.NewEndpoint(from.GSTHandle(kind, i)), ir.NewEndpoint(q.ID))
	}
	return p
}

// compositedClipHandle names the element that sinks the i-th stream of the
// given kind into a composited clip's muxer, the Go equivalent of
// original_source's clip.get_gstreamer_id, called only from
// output_node.rs's emitter and likewise not defined in any retrieved
// source file. Reconstructed from its call site, where it names a node
// feeding a per-clip splitmuxsink, kept unique per clip/kind/index the same
// way media.PipedType.GSTHandle keys per node/property/kind/index.
func compositedClipHandle(clipID media.ID, kind media.StreamKind, index int) string {
	return fmt.Sprintf("composited-clip-%s-%s-%d", clipID, kind, index)
}
