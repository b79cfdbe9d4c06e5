package registry

import (
	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/ir"
	"github.com/ajsmith595/videoedit/internal/media"
)

// concatKind plays media1 followed by media2 as a single continuous
// stream. Grounded on original_source/shared/src/nodes/concat_node.rs,
// which appends both inputs' UriClipAssets into one ges::Timeline layer
// with no explicit start times, letting GES sequence them end to end.
// There is no Go GES binding, but GStreamer's own `concat` element does the
// same job directly — feed N sink pads, get their content played back to
// back on one src pad — so this is re-expressed as one `concat` element per
// stream kind/index instead of a synthesized GES-equivalent construct.
type concatKind struct{}

func (concatKind) ID() string          { return "concat" }
func (concatKind) DisplayName() string { return "Concat" }
func (concatKind) Description() string { return "Plays one clip after another." }

func (concatKind) DefaultInputs() []media.TypedInput {
	unrestricted := media.InputType{
		Kind:      media.InputPipeable,
		MinCounts: media.StreamCounts{Video: 0, Audio: 0, Subtitles: 0},
		MaxCounts: media.StreamCounts{Video: media.Unbounded, Audio: media.Unbounded, Subtitles: media.Unbounded},
	}
	return []media.TypedInput{
		{Name: "media1", DisplayName: "First clip", Description: "Played first.", Type: unrestricted},
		{Name: "media2", DisplayName: "Second clip", Description: "Played second.", Type: unrestricted},
	}
}

// ResolveIO narrows an {unbounded,unbounded,unbounded} start by the
// componentwise minimum of whichever of media1/media2 are actually piped,
// mirroring concat_node.rs's get_io.
func (concatKind) ResolveIO(ctx Context) (media.StreamCounts, error) {
	counts := media.StreamCounts{Video: media.Unbounded, Audio: media.Unbounded, Subtitles: media.Unbounded}
	if m1, ok := ctx.PipedInputs["media1"]; ok {
		counts = media.Min(counts, m1.Counts)
	}
	if m2, ok := ctx.PipedInputs["media2"]; ok {
		counts = media.Min(counts, m2.Counts)
	}
	return counts, nil
}

// Emit wires a `concat` element per stream kind/index, with media1's stream
// on sink_0 and media2's on sink_1, naming each concat element at this
// node's output handle.
func (k concatKind) Emit(ctx Context) (*ir.Pipeline, error) {
	media1, ok1 := ctx.PipedInputs["media1"]
	media2, ok2 := ctx.PipedInputs["media2"]
	if !ok1 || !ok2 {
		return nil, errors.NewNodeEmitError("concat.Emit", ctx.NodeID, errNoMediaPiped)
	}

	counts, err := k.ResolveIO(ctx)
	if err != nil {
		return nil, err
	}
	output := media.PipedType{Counts: counts, NodeID: ctx.NodeID, Property: OutputProperty, Direction: media.DirOutput}

	p := ir.New()
	for _, kind := range []media.StreamKind{media.Video, media.Audio, media.Subtitles} {
		for i := 0; i < counts.Of(kind); i++ {
			c := ir.NewNodeWithID("concat", output.GSTHandle(kind, i))
			p.AddNode(c)
			p.LinkEndpoints(ir.NewEndpoint(media1.GSTHandle(kind, i)), ir.NewEndpointWithProperty(c.ID, "sink_0"))
			p.LinkEndpoints(ir.NewEndpoint(media2.GSTHandle(kind, i)), ir.NewEndpointWithProperty(c.ID, "sink_1"))
		}
	}
	return p, nil
}
