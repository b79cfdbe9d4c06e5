package registry

import (
	"fmt"

	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/ir"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
)

// ClipImportNodeType and ClipImportClipProperty are exported so
// internal/cache can recognize a clip_import node and read its clip
// property without instantiating a Kind, mirroring
// original_source/shared/src/cache.rs's clip_modified reaching directly for
// media_import_node::IDENTIFIER and inputs::CLIP.
const (
	ClipImportNodeType     = "clip_import"
	ClipImportClipProperty = "clip"
)

// clipImportKind brings a source or composited clip into the graph as a
// pipeable media output. Grounded on
// original_source/shared/src/nodes/media_import_node.rs.
type clipImportKind struct{}

func (clipImportKind) ID() string          { return ClipImportNodeType }
func (clipImportKind) DisplayName() string { return "Import" }
func (clipImportKind) Description() string { return "Imports a source or composited clip." }

func (clipImportKind) DefaultInputs() []media.TypedInput {
	return []media.TypedInput{
		{
			Name:        "clip",
			DisplayName: "Clip",
			Description: "The source or composited clip to import.",
			Type:        media.InputType{Kind: media.InputClip},
		},
	}
}

// ResolveIO resolves the output stream counts to the imported clip's known
// counts, or the "unknown" {MAX,MAX,MAX} sentinel when no clip property is
// set yet — mirroring media_import_node.rs's get_io.
func (clipImportKind) ResolveIO(ctx Context) (media.StreamCounts, error) {
	if _, ok := ctx.Properties["clip"]; !ok {
		return media.StreamCounts{Video: media.Unbounded, Audio: media.Unbounded, Subtitles: media.Unbounded}, nil
	}
	clip, err := getClipIdentifier(ctx.Properties)
	if err != nil {
		return media.StreamCounts{}, errors.NewNodeEmitError("clip_import.ResolveIO", ctx.NodeID, err)
	}

	switch clip.ClipType {
	case project.ClipSource:
		source, ok := ctx.Store.Clips.Source[clip.ID]
		if !ok {
			return media.StreamCounts{}, errors.NewNodeEmitError("clip_import.ResolveIO", ctx.NodeID, fmt.Errorf("clip id is invalid"))
		}
		return source.GetClipType(), nil
	case project.ClipComposited:
		counts, ok := ctx.CompositedClipTypes[clip.ID]
		if !ok {
			return media.StreamCounts{}, errors.NewNodeEmitError("clip_import.ResolveIO", ctx.NodeID, fmt.Errorf("composited clip type is invalid"))
		}
		return counts, nil
	default:
		return media.StreamCounts{}, errors.NewNodeEmitError("clip_import.ResolveIO", ctx.NodeID, fmt.Errorf("unknown clip type"))
	}
}

// Emit builds one source/import element for the resolved clip and a named
// handle node per stream it carries, so downstream nodes can link against
// media.PipedType.GSTHandle the same way they would for any other output.
//
// original_source's media_import_node.rs builds a ges::UriClip and adds it
// to a fresh ges::Timeline/layer — there is no Go binding for GES, so this
// is re-expressed as a `uridecodebin` element whose demuxed pads are named
// per stream, following the pattern output_node.rs/blur_node.rs use for
// every other IR-based node kind (see this package's doc comment).
func (k clipImportKind) Emit(ctx Context) (*ir.Pipeline, error) {
	clip, err := getClipIdentifier(ctx.Properties)
	if err != nil {
		return nil, errors.NewNodeEmitError("clip_import.Emit", ctx.NodeID, err)
	}

	var uri string
	var counts media.StreamCounts
	switch clip.ClipType {
	case project.ClipSource:
		source, ok := ctx.Store.Clips.Source[clip.ID]
		if !ok {
			return nil, errors.NewNodeEmitError("clip_import.Emit", ctx.NodeID, fmt.Errorf("clip id is invalid"))
		}
		uri = source.ServerURL()
		counts = source.GetClipType()
	case project.ClipComposited:
		composited, ok := ctx.Store.Clips.Composited[clip.ID]
		if !ok {
			return nil, errors.NewNodeEmitError("clip_import.Emit", ctx.NodeID, fmt.Errorf("composited clip id is invalid"))
		}
		uri = composited.TimelineLocation()
		counts = ctx.CompositedClipTypes[clip.ID]
	}

	output := media.PipedType{Counts: counts, NodeID: ctx.NodeID, Property: OutputProperty, Direction: media.DirOutput}

	p := ir.New()
	src := ir.NewNodeWithProps("uridecodebin", map[string]string{"uri": uri})
	p.AddNode(src)

	for _, kind := range []media.StreamKind{media.Video, media.Audio, media.Subtitles} {
		count := counts.Of(kind)
		for i := 0; i < count; i++ {
			handle := ir.NewNodeWithID("queue", output.GSTHandle(kind, i))
			p.AddNode(handle)
			p.LinkEndpoints(ir.NewEndpointWithProperty(src.ID, fmt.Sprintf("%s_%d", kind, i)), ir.NewEndpoint(handle.ID))
		}
	}
	return p, nil
}
