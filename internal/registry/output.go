package registry

import (
	"fmt"

	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/ir"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
)

// OutputNodeType is exported so internal/compiler can recognize the
// terminal output node and read its clip property while materializing the
// graph's implicit composited-clip edges, without instantiating a Kind.
const OutputNodeType = "output"

// outputKind is the terminal node that muxes a graph's resolved media into
// a composited clip's segmented output file. Grounded on
// original_source/shared/src/nodes/output_node.rs, already AbstractPipeline-
// based in the original — the most literal of the five node ports.
type outputKind struct{}

func (outputKind) ID() string          { return OutputNodeType }
func (outputKind) DisplayName() string { return "Output" }
func (outputKind) Description() string { return "Writes media to a composited clip." }

func (outputKind) DefaultInputs() []media.TypedInput {
	return []media.TypedInput{
		{
			Name:        "media",
			DisplayName: "Media",
			Description: "The media to write out.",
			Type: media.InputType{
				Kind:      media.InputPipeable,
				MinCounts: media.StreamCounts{Video: 0, Audio: 0, Subtitles: 0},
				MaxCounts: media.StreamCounts{Video: media.Unbounded, Audio: media.Unbounded, Subtitles: media.Unbounded},
			},
		},
		{
			Name:        "clip",
			DisplayName: "Clip",
			Description: "The composited clip to write to.",
			Type:        media.InputType{Kind: media.InputClip},
		},
	}
}

// ResolveIO is trivial: an output node has no outputs of its own.
func (outputKind) ResolveIO(ctx Context) (media.StreamCounts, error) {
	return media.StreamCounts{}, nil
}

// getOutputClip resolves the `clip` property to a CompositedClip, mirroring
// output_node.rs's get_clip helper. The Rust original unwraps (panics) when
// the clip id doesn't resolve; this returns a StoreError instead, since a
// partial-compile failure must be a returned error, not a crash (spec.md
// §4.2's compile semantics).
func getOutputClip(properties map[string]any, store *project.Store) (*project.CompositedClip, error) {
	id, err := getClipIdentifier(properties)
	if err != nil {
		return nil, err
	}
	clip, ok := store.Clips.Composited[id.ID]
	if !ok {
		return nil, errors.NewStoreError("registry.getOutputClip", fmt.Errorf("no composited clip %s", id.ID))
	}
	return clip, nil
}

// Emit builds the composited clip's splitmuxsink and, for every piped
// stream, a stream-linker (videoconvert/audioconvert) named at the clip's
// per-stream handle, a queue, and an encoder chain feeding the sink's named
// pad. Mirrors output_node.rs's get_output exactly, including its
// max-size-time in nanoseconds and its single-video-stream restriction —
// returned here as an error rather than a panic, consistent with
// getOutputClip's divergence above.
func (k outputKind) Emit(ctx Context) (*ir.Pipeline, error) {
	media_, ok := ctx.PipedInputs["media"]
	if !ok {
		return nil, errors.NewNodeEmitError("output.Emit", ctx.NodeID, errNoMediaPiped)
	}
	clip, err := getOutputClip(ctx.Properties, ctx.Store)
	if err != nil {
		return nil, errors.NewNodeEmitError("output.Emit", ctx.NodeID, err)
	}
	if media_.Counts.Video > 1 {
		return nil, errors.NewNodeEmitError("output.Emit", ctx.NodeID,
			fmt.Errorf("splitmuxsink only supports one video stream, attempted to pipe in %d streams", media_.Counts.Video))
	}

	sinkID := fmt.Sprintf("composited-clip-file-%s", clip.ID)
	p := ir.New()
	sink := ir.NewNodeWithProps("splitmuxsink", map[string]string{
		"location":               clip.OutputLocationTemplate(),
		"muxer-factory":          "mp4mux",
		"muxer-properties":       `"properties,streamable=true,fragment-duration=1000"`,
		"async-finalize":         "true",
		"max-size-time":          fmt.Sprintf("%d", int64(project.ChunkLengthSeconds)*1_000_000_000),
		"send-keyframe-requests": "true",
	})
	sink.ID = sinkID
	p.AddNode(sink)

	for _, kind := range []media.StreamKind{media.Video, media.Audio, media.Subtitles} {
		count := media_.Counts.Of(kind)
		for i := 0; i < count; i++ {
			gst1 := media_.GSTHandle(kind, i)
			gst2 := compositedClipHandle(clip.ID, kind, i)

			linker := ir.NewNodeWithID(kind.Linker(), gst2)
			p.AddNode(linker)
			p.LinkEndpoints(ir.NewEndpoint(gst1), ir.NewEndpoint(linker.ID))

			queue := ir.NewNode("queue")
			p.AddNode(queue)
			p.LinkEndpoints(ir.NewEndpoint(linker.ID), ir.NewEndpoint(queue.ID))

			encoderInputID, encoderOutputID, err := emitOutputEncoder(p, kind)
			if err != nil {
				return nil, errors.NewNodeEmitError("output.Emit", ctx.NodeID, err)
			}
			p.LinkEndpoints(ir.NewEndpoint(queue.ID), ir.NewEndpoint(encoderInputID))

			pad := "video"
			if kind != media.Video {
				pad = fmt.Sprintf("%s_%d", kind, i)
			}
			p.LinkEndpoints(ir.NewEndpoint(encoderOutputID), ir.NewEndpointWithProperty(sink.ID, pad))
		}
	}
	return p, nil
}

// emitOutputEncoder adds the encode chain for one stream kind directly (not
// via an ir encoder alias, since this subtree is never shared/fanned-out —
// it always feeds exactly one splitmuxsink pad), mirroring output_node.rs's
// inline nvh264enc/h264parse and avenc_aac construction.
func emitOutputEncoder(p *ir.Pipeline, kind media.StreamKind) (inputID, outputID string, err error) {
	switch kind {
	case media.Video:
		enc := ir.NewNodeWithProps("nvh264enc", map[string]string{"bitrate": "400"})
		parse := ir.NewNode("h264parse")
		p.AddNode(enc)
		p.AddNode(parse)
		p.LinkEndpoints(ir.NewEndpoint(enc.ID), ir.NewEndpoint(parse.ID))
		return enc.ID, parse.ID, nil
	case media.Audio:
		enc := ir.NewNode("avenc_aac")
		p.AddNode(enc)
		return enc.ID, enc.ID, nil
	default:
		return "", "", fmt.Errorf("subtitle output is not implemented")
	}
}
