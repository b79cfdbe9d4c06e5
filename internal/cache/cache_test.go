package cache

import (
	"testing"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/stretchr/testify/assert"
)

// buildTwoNodeStore mirrors original_source/shared/src/cache.rs's
// test_cache_1/test_cache_2 fixture: two blur nodes linked node1.output ->
// node2.media.
func buildTwoNodeStore() (store *project.Store, node1, node2 *project.Node) {
	node1 = project.NewNode("blur", media.Nil)
	node2 = project.NewNode("blur", media.Nil)

	store = project.New()
	store.Nodes[node1.ID] = node1
	store.Nodes[node2.ID] = node2
	store.Pipeline.Links = append(store.Pipeline.Links, project.Link{
		From: project.LinkEndpoint{NodeID: node1.ID, Property: "output"},
		To:   project.LinkEndpoint{NodeID: node2.ID, Property: "media"},
	})
	return store, node1, node2
}

func TestNodeModifiedInvalidatesDownstream(t *testing.T) {
	store, node1, node2 := buildTwoNodeStore()

	c := New()
	c.Put(node1.ID, map[string]media.ID{})
	c.Put(node2.ID, map[string]media.ID{})

	c.NodeModified(node1.ID, store)

	_, ok := c.Get(node2.ID)
	assert.False(t, ok, "modifying node1 must also invalidate node2, which depends on it")
}

func TestNodeModifiedLeavesUpstreamIntact(t *testing.T) {
	store, node1, node2 := buildTwoNodeStore()

	c := New()
	c.Put(node1.ID, map[string]media.ID{})
	c.Put(node2.ID, map[string]media.ID{})

	c.NodeModified(node2.ID, store)

	_, ok := c.Get(node1.ID)
	assert.True(t, ok, "modifying node2 must not invalidate node1, which node2 depends on")
}

func TestClipModifiedInvalidatesReferencingImporters(t *testing.T) {
	store := project.New()
	clipID := media.NewID()

	importer := project.NewNode("clip_import", media.Nil)
	importer.Properties["clip"] = map[string]any{"id": clipID.String(), "clip_type": "source"}
	store.Nodes[importer.ID] = importer

	downstream := project.NewNode("blur", media.Nil)
	store.Nodes[downstream.ID] = downstream
	store.Pipeline.Links = append(store.Pipeline.Links, project.Link{
		From: project.LinkEndpoint{NodeID: importer.ID, Property: "clip"},
		To:   project.LinkEndpoint{NodeID: downstream.ID, Property: "media"},
	})

	c := New()
	c.Put(importer.ID, map[string]media.ID{})
	c.Put(downstream.ID, map[string]media.ID{})

	c.ClipModified(clipID, project.ClipSource, store)

	_, importerCached := c.Get(importer.ID)
	_, downstreamCached := c.Get(downstream.ID)
	assert.False(t, importerCached)
	assert.False(t, downstreamCached)
}

func TestClipModifiedIgnoresUnrelatedClip(t *testing.T) {
	store := project.New()
	importer := project.NewNode("clip_import", media.Nil)
	importer.Properties["clip"] = map[string]any{"id": media.NewID().String(), "clip_type": "source"}
	store.Nodes[importer.ID] = importer

	c := New()
	c.Put(importer.ID, map[string]media.ID{})

	c.ClipModified(media.NewID(), project.ClipSource, store)

	_, ok := c.Get(importer.ID)
	assert.True(t, ok, "an unrelated clip id must not invalidate an unrelated importer")
}
