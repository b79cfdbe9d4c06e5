package project

import "github.com/ajsmith595/videoedit/internal/media"

// Position is a node's position in the editor's graph canvas. Purely
// presentational; the compiler never reads it.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is a single instance of a registered node kind in the Store's graph
// (spec.md §3 "Node").
type Node struct {
	Position   Position       `json:"position"`
	ID         media.ID       `json:"id"`
	NodeType   string         `json:"node_type"`
	Properties map[string]any `json:"properties"`
	Group      media.ID       `json:"group"`
}

// NewNode constructs a Node of the given registered kind. If group is the
// nil ID, a fresh group id is assigned so the node starts as its own group
// (mirrors original_source's Node::new passing None for an ungrouped node).
func NewNode(nodeType string, group media.ID) *Node {
	if group == media.Nil {
		group = media.NewID()
	}
	return &Node{
		Position:   Position{},
		ID:         media.NewID(),
		NodeType:   nodeType,
		Properties: map[string]any{},
		Group:      group,
	}
}

// LinkEndpoint names one side of a Link: a node id and one of its declared
// input/output property names.
type LinkEndpoint struct {
	NodeID   media.ID `json:"node_id"`
	Property string   `json:"property"`
}

// Link is a directed edge from an output endpoint to an input endpoint
// (spec.md §3 "Link").
type Link struct {
	From LinkEndpoint `json:"from"`
	To   LinkEndpoint `json:"to"`
}

// Pipeline is the Store's explicit link set (spec.md §3 "Pipeline"). Implicit
// composited-clip-output → importer edges are added by the compiler when it
// materializes a graph from the Store, not stored here.
type Pipeline struct {
	Links []Link `json:"links"`
}

// NewPipeline returns an empty Pipeline.
func NewPipeline() Pipeline {
	return Pipeline{Links: []Link{}}
}
