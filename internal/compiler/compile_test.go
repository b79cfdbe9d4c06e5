package compiler

import (
	"testing"

	"github.com/ajsmith595/videoedit/internal/cache"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clipRef(id media.ID, clipType project.ClipType) map[string]any {
	return map[string]any{"id": id.String(), "clip_type": clipType.String()}
}

func TestCompileResolvesSimpleChain(t *testing.T) {
	store := project.New()
	source := &project.SourceClip{
		ID:           media.NewID(),
		FileLocation: strPtr("/tmp/in.mp4"),
		Info: &project.ClipInfo{
			VideoStreams: []project.VideoStreamInfo{{}},
		},
	}
	store.Clips.Source[source.ID] = source

	importNode := project.NewNode(registry.ClipImportNodeType, media.Nil)
	importNode.Properties["clip"] = clipRef(source.ID, project.ClipSource)
	store.Nodes[importNode.ID] = importNode

	blurNode := project.NewNode("blur", media.Nil)
	blurNode.Properties["sigma"] = 3.0
	store.Nodes[blurNode.ID] = blurNode

	store.Pipeline.Links = append(store.Pipeline.Links, project.Link{
		From: project.LinkEndpoint{NodeID: importNode.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: blurNode.ID, Property: "media"},
	})

	reg := registry.New()
	c := cache.New()

	result, err := Compile(store, reg, c, true)
	require.NoError(t, err)
	assert.True(t, result.Success)

	blurResult, ok := result.Nodes[blurNode.ID]
	require.True(t, ok)
	assert.Equal(t, media.StreamCounts{Video: 1, Audio: 0, Subtitles: 0}, blurResult.Counts)

	piped, ok := blurResult.PipedInputs["media"]
	require.True(t, ok)
	assert.Equal(t, importNode.ID, piped.NodeID)
	assert.Equal(t, registry.OutputProperty, piped.Property)

	assert.NotNil(t, result.Pipeline)
	var foundBlur bool
	for _, n := range result.Pipeline.Nodes {
		if n.Kind == "gaussianblur" {
			foundBlur = true
		}
	}
	assert.True(t, foundBlur)
}

func TestCompileDetectsCycle(t *testing.T) {
	store := project.New()
	a := project.NewNode("blur", media.Nil)
	b := project.NewNode("blur", media.Nil)
	store.Nodes[a.ID] = a
	store.Nodes[b.ID] = b
	store.Pipeline.Links = []project.Link{
		{From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty}, To: project.LinkEndpoint{NodeID: b.ID, Property: "media"}},
		{From: project.LinkEndpoint{NodeID: b.ID, Property: registry.OutputProperty}, To: project.LinkEndpoint{NodeID: a.ID, Property: "media"}},
	}

	_, err := Compile(store, registry.New(), cache.New(), false)
	assert.Error(t, err)
}

func TestCompileRejectsLinkToMissingNode(t *testing.T) {
	store := project.New()
	a := project.NewNode("blur", media.Nil)
	store.Nodes[a.ID] = a
	store.Pipeline.Links = []project.Link{
		{From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty}, To: project.LinkEndpoint{NodeID: media.NewID(), Property: "media"}},
	}

	_, err := Compile(store, registry.New(), cache.New(), false)
	assert.Error(t, err)
}

func TestCompileMarksPartialSuccessOnEmitFailure(t *testing.T) {
	store := project.New()
	clip := &project.CompositedClip{ID: media.NewID()}
	store.Clips.Composited[clip.ID] = clip

	// An unpiped blur node still resolves IO (falls back to the "unknown"
	// sentinel counts) but cannot Emit, since it has no media to blur.
	unpipedBlur := project.NewNode("blur", media.Nil)
	store.Nodes[unpipedBlur.ID] = unpipedBlur

	outputNode := project.NewNode(registry.OutputNodeType, media.Nil)
	outputNode.Properties["clip"] = clipRef(clip.ID, project.ClipComposited)
	store.Nodes[outputNode.ID] = outputNode

	store.Pipeline.Links = append(store.Pipeline.Links, project.Link{
		From: project.LinkEndpoint{NodeID: unpipedBlur.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: outputNode.ID, Property: "media"},
	})

	reg := registry.New()
	c := cache.New()

	result, err := Compile(store, reg, c, true)
	require.NoError(t, err, "a node's Emit failure must not abort the whole compile")
	assert.False(t, result.Success)

	blurResult, ok := result.Nodes[unpipedBlur.ID]
	require.True(t, ok, "IO resolution still runs for a node whose Emit later fails")
	assert.Equal(t, media.Unbounded, blurResult.Counts.Video)
}

func strPtr(s string) *string { return &s }
