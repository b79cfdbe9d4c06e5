package ir

import (
	"sort"
	"strings"

	"github.com/ajsmith595/videoedit/internal/media"
)

// Pipeline is a flat, mutable intermediate pipeline: a node set keyed by id
// plus an ordered link list. ToPipelineText runs the canonical transform
// sequence and renders the result as backend element/link description
// lines.
type Pipeline struct {
	Nodes map[string]*Node
	Links []Link
}

// New returns an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{Nodes: map[string]*Node{}, Links: []Link{}}
}

// AddNode registers a node, keyed by its id.
func (p *Pipeline) AddNode(n *Node) {
	p.Nodes[n.ID] = n
}

// Link appends a bare (no named property) link from one node to another.
func (p *Pipeline) Link(from, to *Node) {
	p.Links = append(p.Links, Link{From: NewEndpoint(from.ID), To: NewEndpoint(to.ID)})
}

// LinkEndpoints appends a link between two explicit endpoints.
func (p *Pipeline) LinkEndpoints(from, to LinkEndpoint) {
	p.Links = append(p.Links, Link{From: from, To: to})
}

// LinkAbstract appends an already-constructed Link.
func (p *Pipeline) LinkAbstract(l Link) {
	p.Links = append(p.Links, l)
}

// Merge absorbs another pipeline's nodes and links into this one.
func (p *Pipeline) Merge(other *Pipeline) {
	for _, n := range other.Nodes {
		p.AddNode(n)
	}
	p.Links = append(p.Links, other.Links...)
}

// handleSplits inserts a tee+encoder at any linker node whose output fans
// out to more than one consumer, and a queue+decoder pair feeding each
// original consumer from the tee, so the rendered pipeline never asks a
// single pad to feed two downstream branches directly.
func (p *Pipeline) handleSplits() {
	fanout := map[LinkEndpoint]int{}
	for _, l := range p.Links {
		fanout[l.From]++
	}

	type split struct {
		teeID, encoderID string
		kind             media.StreamKind
	}
	toSplit := map[LinkEndpoint]split{}

	keys := make([]LinkEndpoint, 0, len(fanout))
	for k := range fanout {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })

	for _, from := range keys {
		if fanout[from] <= 1 {
			continue
		}
		target, ok := p.Nodes[from.ID]
		if !ok || !target.IsLinker() {
			continue
		}
		linkerKind := target.LinkerKind()
		encoder := NewEncoder(linkerKind)
		tee := NewNode("tee")

		toSplit[from] = split{teeID: tee.ID, encoderID: encoder.ID, kind: linkerKind}

		p.Link(encoder, tee)
		p.AddNode(encoder)
		p.AddNode(tee)
	}

	extra := New()
	for i := range p.Links {
		link := &p.Links[i]
		sp, ok := toSplit[link.From]
		if !ok {
			continue
		}
		queue := NewNodeWithProps("queue", map[string]string{
			"max-size-buffers": "0",
			"max-size-bytes":   "0",
			"max-size-time":    "0",
		})
		decoder := NewDecoder(sp.kind)

		extra.LinkEndpoints(NewEndpoint(sp.teeID), NewEndpoint(queue.ID))
		extra.Link(queue, decoder)

		link.From = NewEndpoint(decoder.ID)

		extra.AddNode(queue)
		extra.AddNode(decoder)
	}
	p.Merge(extra)

	for from, sp := range toSplit {
		p.LinkEndpoints(NewEndpoint(from.ID), NewEndpoint(sp.encoderID))
	}
}

// optimise is a reserved hook for future pipeline simplification passes
// (e.g. collapsing redundant encode/decode pairs). It is intentionally a
// no-op.
func (p *Pipeline) optimise() {}

// convertAliases expands every encoder/decoder alias node into its concrete
// element chain and rewrites links that referenced the alias to point at
// the expansion's entry/exit elements.
func (p *Pipeline) convertAliases() {
	type rewrite struct{ entryID, exitID string }
	rewrites := map[string]rewrite{}

	for id, node := range p.Nodes {
		if !node.IsAliased() {
			continue
		}
		expansion, entryID, exitID := node.AliasToPipeline()
		p.Merge(expansion)
		rewrites[id] = rewrite{entryID: entryID, exitID: exitID}
	}
	for id := range rewrites {
		delete(p.Nodes, id)
	}

	for i := range p.Links {
		link := &p.Links[i]
		if rw, ok := rewrites[link.From.ID]; ok {
			link.From.ID = rw.exitID
		}
		if rw, ok := rewrites[link.To.ID]; ok {
			link.To.ID = rw.entryID
		}
	}
}

// isTerminal reports whether a node kind is a valid pipeline sink that
// remove_dangling must never prune even with zero outgoing links.
func isTerminal(kind string) bool {
	return kind == "splitmuxsink" || kind == "filesink"
}

// removeDangling repeatedly prunes any non-terminal node with zero
// outgoing links, re-checking each of its former predecessors since
// removing it may have made them dangling in turn.
func (p *Pipeline) removeDangling() {
	toCheck := make([]string, 0, len(p.Nodes))
	for id := range p.Nodes {
		toCheck = append(toCheck, id)
	}

	for len(toCheck) > 0 {
		id := toCheck[0]
		toCheck = toCheck[1:]
		if predecessors, removed := p.checkAndRemoveDangling(id); removed {
			toCheck = append(toCheck, predecessors...)
		}
	}
}

// checkAndRemoveDangling removes id if it is a non-terminal dead end (no
// outgoing links), returning its former predecessors' ids so the caller can
// re-check them.
func (p *Pipeline) checkAndRemoveDangling(id string) (predecessors []string, removed bool) {
	node, ok := p.Nodes[id]
	if !ok {
		return nil, false
	}
	if isTerminal(node.Kind) {
		return nil, false
	}

	for _, l := range p.Links {
		if l.From.ID == id {
			return nil, false
		}
	}

	for _, l := range p.Links {
		if l.To.ID == id {
			predecessors = append(predecessors, l.From.ID)
		}
	}

	delete(p.Nodes, id)
	kept := p.Links[:0]
	for _, l := range p.Links {
		if l.To.ID != id {
			kept = append(kept, l)
		}
	}
	p.Links = kept

	return predecessors, true
}

// ToPipelineText runs the canonical transform sequence —
// handleSplits, removeDangling, optimise, convertAliases, removeDangling —
// then renders the resulting links and nodes as backend description lines.
func (p *Pipeline) ToPipelineText() string {
	p.handleSplits()
	p.removeDangling()
	p.optimise()
	p.convertAliases()
	p.removeDangling()

	var b strings.Builder
	for _, l := range p.Links {
		b.WriteString("\n")
		b.WriteString(l.ToPipelineText())
	}
	for _, n := range p.Nodes {
		b.WriteString("\n")
		b.WriteString(n.ToPipelineText())
	}
	return b.String()
}
