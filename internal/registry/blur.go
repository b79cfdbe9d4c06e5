package registry

import (
	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/ir"
	"github.com/ajsmith595/videoedit/internal/media"
)

// blurKind applies a Gaussian blur to every video stream of its input,
// passing audio and subtitle streams through unchanged. Grounded on
// original_source/shared/src/nodes/blur_node.rs, already AbstractPipeline-
// based in the original.
type blurKind struct{}

func (blurKind) ID() string          { return "blur" }
func (blurKind) DisplayName() string { return "Blur" }
func (blurKind) Description() string { return "Applies a Gaussian blur to video streams." }

func (blurKind) DefaultInputs() []media.TypedInput {
	return []media.TypedInput{
		{
			Name:        "media",
			DisplayName: "Media",
			Description: "The media to blur.",
			Type: media.InputType{
				Kind:      media.InputPipeable,
				MinCounts: media.StreamCounts{Video: 1, Audio: 0, Subtitles: 0},
				MaxCounts: media.StreamCounts{Video: 1, Audio: media.Unbounded, Subtitles: media.Unbounded},
			},
		},
		{
			Name:        "sigma",
			DisplayName: "Sigma",
			Description: "The standard deviation of the blur kernel.",
			Type: media.InputType{
				Kind:         media.InputNumber,
				Restrictions: media.Restrictions{Min: 0, Max: 100, Step: 0.01, Default: 1.2},
			},
		},
	}
}

// ResolveIO passes the piped media's stream counts straight through, or the
// "unknown" sentinel if media isn't piped yet, mirroring blur_node.rs's
// get_io.
func (blurKind) ResolveIO(ctx Context) (media.StreamCounts, error) {
	piped, ok := ctx.PipedInputs["media"]
	if !ok {
		return media.StreamCounts{Video: media.Unbounded, Audio: media.Unbounded, Subtitles: media.Unbounded}, nil
	}
	return piped.Counts, nil
}

// Emit passes audio and subtitles through untouched and runs every video
// stream through a gaussianblur element, naming each blurred stream's exit
// element (a videoconvert) at this node's output handle so downstream links
// resolve the same way they would for any other kind — mirroring
// blur_node.rs's get_output exactly, including its choice to name the
// trailing videoconvert (not the gaussianblur itself) as the stream's
// handle.
func (k blurKind) Emit(ctx Context) (*ir.Pipeline, error) {
	media_, ok := ctx.PipedInputs["media"]
	if !ok {
		return nil, errors.NewNodeEmitError("blur.Emit", ctx.NodeID, errNoMediaPiped)
	}
	sigma, err := numberProperty(ctx.Properties, "sigma", 1.2)
	if err != nil {
		return nil, errors.NewNodeEmitError("blur.Emit", ctx.NodeID, err)
	}

	output := media.PipedType{Counts: media_.Counts, NodeID: ctx.NodeID, Property: OutputProperty, Direction: media.DirOutput}

	p := ir.New()
	p.Merge(passthrough(media_, output, media.Audio))
	p.Merge(passthrough(media_, output, media.Subtitles))

	for i := 0; i < media_.Counts.Of(media.Video); i++ {
		blur := ir.NewNodeWithProps("gaussianblur", map[string]string{"sigma": formatFloat(sigma)})
		conv := ir.NewNodeWithID("videoconvert", output.GSTHandle(media.Video, i))
		p.AddNode(blur)
		p.AddNode(conv)
		p.LinkEndpoints(ir.NewEndpoint(media_.GSTHandle(media.Video, i)), ir.NewEndpoint(blur.ID))
		p.LinkEndpoints(ir.NewEndpoint(blur.ID), ir.NewEndpoint(conv.ID))
	}
	return p, nil
}
