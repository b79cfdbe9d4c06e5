package tasks

import (
	"encoding/json"
	"testing"

	"github.com/ajsmith595/videoedit/internal/cache"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateNodeOnlyUpdatesExistingNode(t *testing.T) {
	store := project.New()
	existing := project.NewNode("blur", media.Nil)
	store.Nodes[existing.ID] = existing

	replacement := project.NewNode("volume", media.Nil)
	replacement.ID = existing.ID

	network := Apply(store, cache.New(), []Task{UpdateNodeTask{ID: existing.ID, Node: replacement}})
	require.Len(t, network, 1)
	assert.Equal(t, UpdateNodeNetworkTask{ID: existing.ID}, network[0])
	assert.Equal(t, replacement, store.Nodes[existing.ID])
}

func TestUpdateNodeOnUnknownIDIsReverted(t *testing.T) {
	store := project.New()
	node := project.NewNode("blur", media.Nil)

	network := Apply(store, cache.New(), []Task{UpdateNodeTask{ID: node.ID, Node: node}})
	assert.Empty(t, network)
	_, ok := store.Nodes[node.ID]
	assert.False(t, ok, "UpdateNode must not create a node, only update one that already exists")
}

func TestAddNodeInsertsAndReportsID(t *testing.T) {
	store := project.New()
	node := project.NewNode("blur", media.Nil)

	network := Apply(store, cache.New(), []Task{AddNodeTask{Node: node}})
	require.Len(t, network, 1)
	assert.Equal(t, GetNodeIDNetworkTask{ID: node.ID}, network[0])
	assert.Same(t, node, store.Nodes[node.ID])
}

func TestAddLinkReplacesExistingLinkToSameInput(t *testing.T) {
	store := project.New()
	a := project.NewNode("blur", media.Nil)
	b := project.NewNode("blur", media.Nil)
	c := project.NewNode("blur", media.Nil)
	store.Nodes[a.ID] = a
	store.Nodes[b.ID] = b
	store.Nodes[c.ID] = c

	store.Pipeline.Links = []project.Link{{
		From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: c.ID, Property: "media"},
	}}

	newLink := project.Link{
		From: project.LinkEndpoint{NodeID: b.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: c.ID, Property: "media"},
	}
	network := Apply(store, cache.New(), []Task{AddLinkTask{Link: newLink}})
	require.Len(t, network, 1)
	require.Len(t, store.Pipeline.Links, 1, "the old link into the same input must be replaced, not appended alongside")
	assert.Equal(t, newLink, store.Pipeline.Links[0])
}

// DeleteLinks with a property removes only the link into that node's named
// input: a link into another input of the same node, and a link into the
// same-named input of another node, both survive.
func TestDeleteLinksByPropertyRemovesOnlyThatInput(t *testing.T) {
	store := project.New()
	a := project.NewNode("blur", media.Nil)
	target := project.NewNode("concat", media.Nil)
	other := project.NewNode("concat", media.Nil)
	store.Nodes[a.ID] = a
	store.Nodes[target.ID] = target
	store.Nodes[other.ID] = other

	toTargetSameProperty := project.Link{
		From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: target.ID, Property: "media1"},
	}
	toTargetOtherProperty := project.Link{
		From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: target.ID, Property: "media2"},
	}
	toOtherSameProperty := project.Link{
		From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: other.ID, Property: "media1"},
	}
	toOtherDifferentProperty := project.Link{
		From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: other.ID, Property: "media2"},
	}
	store.Pipeline.Links = []project.Link{toTargetSameProperty, toTargetOtherProperty, toOtherSameProperty, toOtherDifferentProperty}

	prop := "media1"
	Apply(store, cache.New(), []Task{DeleteLinksTask{NodeID: target.ID, Property: &prop}})

	assert.Equal(t, []project.Link{toTargetOtherProperty, toOtherSameProperty, toOtherDifferentProperty}, store.Pipeline.Links)
}

func TestDeleteNodeRemovesNodeAndTouchingLinks(t *testing.T) {
	store := project.New()
	a := project.NewNode("blur", media.Nil)
	b := project.NewNode("blur", media.Nil)
	store.Nodes[a.ID] = a
	store.Nodes[b.ID] = b
	store.Pipeline.Links = []project.Link{{
		From: project.LinkEndpoint{NodeID: a.ID, Property: registry.OutputProperty},
		To:   project.LinkEndpoint{NodeID: b.ID, Property: "media"},
	}}

	network := Apply(store, cache.New(), []Task{DeleteNodeTask{ID: a.ID}})
	require.Len(t, network, 1)
	_, ok := store.Nodes[a.ID]
	assert.False(t, ok)
	assert.Empty(t, store.Pipeline.Links)
}

func TestUpdateClipSkipsWhenClipDoesNotExist(t *testing.T) {
	store := project.New()
	payload, err := json.Marshal(project.SourceClip{Name: "renamed"})
	require.NoError(t, err)

	network := Apply(store, cache.New(), []Task{
		UpdateClipTask{ID: media.NewID(), ClipType: project.ClipSource, Clip: payload},
	})
	assert.Empty(t, network)
}

func TestUpdateClipReplacesExistingClipContentsPreservingID(t *testing.T) {
	store := project.New()
	existing := &project.SourceClip{ID: media.NewID(), Name: "original"}
	store.Clips.Source[existing.ID] = existing

	payload, err := json.Marshal(project.SourceClip{ID: media.NewID(), Name: "renamed"})
	require.NoError(t, err)

	network := Apply(store, cache.New(), []Task{
		UpdateClipTask{ID: existing.ID, ClipType: project.ClipSource, Clip: payload},
	})
	require.Len(t, network, 1)
	assert.Equal(t, "renamed", store.Clips.Source[existing.ID].Name)
	assert.Equal(t, existing.ID, store.Clips.Source[existing.ID].ID)
}

func TestCreateCompositedClipAddsOutputNode(t *testing.T) {
	store := project.New()
	clip := project.CompositedClip{ID: media.NewID(), Name: "final cut"}

	network := Apply(store, cache.New(), []Task{CreateCompositedClipTask{Clip: clip}})
	require.Len(t, network, 1)
	assert.Equal(t, GetCompositedClipIDNetworkTask{ID: clip.ID}, network[0])

	var outputNode *project.Node
	for _, n := range store.Nodes {
		if n.NodeType == registry.OutputNodeType {
			outputNode = n
		}
	}
	require.NotNil(t, outputNode, "CreateCompositedClip must add an output node targeting the new clip")
	assert.Equal(t, clipRef(clip.ID, project.ClipComposited), outputNode.Properties[registry.ClipImportClipProperty])
}

func TestApplyMarksStoreDirtyOnlyWhenNetworkTasksProduced(t *testing.T) {
	store := project.New()
	assert.False(t, store.Dirty())

	unknown := project.NewNode("blur", media.Nil)
	Apply(store, cache.New(), []Task{UpdateNodeTask{ID: unknown.ID, Node: unknown}})
	assert.False(t, store.Dirty(), "a no-op UpdateNode must not dirty the store")

	node := project.NewNode("blur", media.Nil)
	Apply(store, cache.New(), []Task{AddNodeTask{Node: node}})
	assert.True(t, store.Dirty())
}
