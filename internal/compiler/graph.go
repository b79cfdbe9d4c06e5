// Package compiler materializes a project.Store's node graph (explicit
// links plus the implicit composited-clip output→importer edges), resolves
// every node's IO and emits its intermediate pipeline fragment in
// topological order, threading resolved output types to each node's
// dependents (spec.md §4.2 "Compile"). Grounded on
// original_source/shared/src/pipeline.rs.
package compiler

import (
	"fmt"
	"sort"

	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
)

// edge is one outgoing connection from a node, carrying the property names
// on both ends. Property is empty for the implicit composited-clip
// output→importer edge original_source's get_graph adds with no endpoint
// properties (a bare ordering constraint, not a data link).
type edge struct {
	to           media.ID
	fromProperty string
	toProperty   string
}

// graph is the materialized form of a Store's Pipeline plus its implicit
// edges: an adjacency list keyed by source node id. original_source builds
// a petgraph::DiGraph plus a BiMap purely to get this adjacency and to
// toposort it; nothing here pulls in a graph library, so this package
// represents the same structure directly as Go maps/slices (see
// DESIGN.md's internal/compiler entry).
type graph struct {
	nodes map[media.ID]*project.Node
	out   map[media.ID][]edge
}

// buildGraph mirrors original_source's Pipeline::get_graph: every store
// node becomes a graph node; every output node's `clip` property must name
// a composited clip, recorded so importer nodes referencing the same
// composited clip get an implicit ordering edge from that output node;
// every explicit Pipeline link becomes an edge between the two node ids it
// names.
func buildGraph(store *project.Store) (*graph, error) {
	g := &graph{nodes: store.Nodes, out: map[media.ID][]edge{}}

	compositedClipOwner := map[media.ID]media.ID{}
	for id, node := range store.Nodes {
		if node.NodeType != registry.OutputNodeType {
			continue
		}
		raw, ok := node.Properties[registry.ClipImportClipProperty]
		if !ok {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("output node %s has no clip", id))
		}
		clipID, clipType, err := parseClipRef(raw)
		if err != nil {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("output node %s: %w", id, err))
		}
		if clipType != project.ClipComposited {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("output node %s must reference a composited clip", id))
		}
		compositedClipOwner[clipID] = id
	}

	for id, node := range store.Nodes {
		if node.NodeType != registry.ClipImportNodeType {
			continue
		}
		raw, ok := node.Properties[registry.ClipImportClipProperty]
		if !ok {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("import node %s has no clip", id))
		}
		clipID, clipType, err := parseClipRef(raw)
		if err != nil {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("import node %s: %w", id, err))
		}
		if clipType != project.ClipComposited {
			continue
		}
		owner, ok := compositedClipOwner[clipID]
		if !ok {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("import node %s references composited clip %s with no output node", id, clipID))
		}
		g.out[owner] = append(g.out[owner], edge{to: id})
	}

	for _, link := range store.Pipeline.Links {
		if _, ok := store.Nodes[link.From.NodeID]; !ok {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("link references non-existent node %s", link.From.NodeID))
		}
		if _, ok := store.Nodes[link.To.NodeID]; !ok {
			return nil, errors.NewGraphError("compiler.buildGraph", fmt.Errorf("link references non-existent node %s", link.To.NodeID))
		}
		g.out[link.From.NodeID] = append(g.out[link.From.NodeID], edge{
			to:           link.To.NodeID,
			fromProperty: link.From.Property,
			toProperty:   link.To.Property,
		})
	}

	return g, nil
}

// parseClipRef parses a node's raw `clip` property (as decoded from JSON:
// a map[string]any with "id"/"clip_type" keys) into an id and ClipType.
func parseClipRef(raw any) (media.ID, project.ClipType, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return media.Nil, 0, fmt.Errorf("clip identifier is malformed")
	}
	idStr, _ := m["id"].(string)
	id, err := media.ParseID(idStr)
	if err != nil {
		return media.Nil, 0, fmt.Errorf("clip identifier is malformed: %w", err)
	}
	switch m["clip_type"] {
	case "source":
		return id, project.ClipSource, nil
	case "composited":
		return id, project.ClipComposited, nil
	default:
		return media.Nil, 0, fmt.Errorf("clip identifier is malformed")
	}
}

// toposort returns the graph's node ids in dependency order (Kahn's
// algorithm), or an error if the graph contains a cycle — mirroring
// original_source's use of petgraph::algo::toposort, for which "a cycle
// means an invalid pipeline anyway" carries over unchanged.
func (g *graph) toposort() ([]media.ID, error) {
	indegree := map[media.ID]int{}
	for id := range g.nodes {
		indegree[id] = 0
	}
	for _, edges := range g.out {
		for _, e := range edges {
			indegree[e.to]++
		}
	}

	var ready []media.ID
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Compare(ready[j]) < 0 })

	var order []media.ID
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var unlocked []media.ID
		for _, e := range g.out[id] {
			indegree[e.to]--
			if indegree[e.to] == 0 {
				unlocked = append(unlocked, e.to)
			}
		}
		sort.Slice(unlocked, func(i, j int) bool { return unlocked[i].Compare(unlocked[j]) < 0 })
		ready = append(ready, unlocked...)
	}

	if len(order) != len(g.nodes) {
		return nil, errors.NewGraphError("compiler.toposort", fmt.Errorf("graph contains a cycle"))
	}
	return order, nil
}
