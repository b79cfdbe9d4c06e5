// Package cache tracks, per node, the set of artifact ids a compile pass
// last produced for it, and invalidates that record when a node or clip
// changes so the next compile knows exactly which nodes must re-emit
// (spec.md §4.4 "Dependency cache"). Grounded on
// original_source/shared/src/cache.rs.
package cache

import (
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
)

// Cache maps a node id to its last-known output artifact ids, keyed by
// output property name — mirroring original_source's
// `HashMap<ID, HashMap<String, ID>>`.
type Cache struct {
	data map[media.ID]map[string]media.ID
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{data: map[media.ID]map[string]media.ID{}}
}

// Get returns the cached output-artifact-id map for a node, and whether an
// entry exists at all.
func (c *Cache) Get(id media.ID) (map[string]media.ID, bool) {
	entry, ok := c.data[id]
	return entry, ok
}

// Put records a node's output-artifact-id map, replacing any existing
// entry.
func (c *Cache) Put(id media.ID, artifacts map[string]media.ID) {
	c.data[id] = artifacts
}

// Clear removes a node's cache entry, if any.
func (c *Cache) Clear(id media.ID) {
	delete(c.data, id)
}

// NodeModified invalidates id's cache entry and every node reachable from
// it by following outgoing links, so a change to one node also drops the
// stale cache of everything downstream of it. Mirrors
// original_source's Cache::node_modified; that version builds a
// petgraph::Graph first purely to call edges_directed, which this port
// does directly against store.Pipeline.Links — Pipeline's link list is
// already the adjacency this worklist needs, so no graph library earns its
// keep here (see DESIGN.md's internal/cache entry).
func (c *Cache) NodeModified(id media.ID, store *project.Store) {
	worklist := []media.ID{id}
	visited := map[media.ID]bool{}

	for len(worklist) > 0 {
		node := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if visited[node] {
			continue
		}
		visited[node] = true
		c.Clear(node)

		for _, link := range store.Pipeline.Links {
			if link.From.NodeID == node {
				worklist = append(worklist, link.To.NodeID)
			}
		}
	}
}

// ClipModified invalidates every clip_import node that references the
// given clip, and everything downstream of each — mirrors
// original_source's Cache::clip_modified.
func (c *Cache) ClipModified(clipID media.ID, clipType project.ClipType, store *project.Store) {
	for id, node := range store.Nodes {
		if node.NodeType != registry.ClipImportNodeType {
			continue
		}
		raw, ok := node.Properties[registry.ClipImportClipProperty]
		if !ok {
			continue
		}
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		idStr, _ := m["id"].(string)
		refID, err := media.ParseID(idStr)
		if err != nil {
			continue
		}
		refType := project.ClipSource
		if m["clip_type"] == "composited" {
			refType = project.ClipComposited
		}
		if refID == clipID && refType == clipType {
			c.NodeModified(id, store)
		}
	}
}
