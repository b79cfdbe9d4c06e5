// Package tasks applies a batch of editor mutations to a project.Store and
// reports back the subset of NetworkTasks a server relays to its other
// connected clients (spec.md §4.3 "Apply"). Grounded on
// original_source/shared/src/task.rs.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/ajsmith595/videoedit/internal/cache"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
)

// Task is one requested mutation of a Store. Each variant below is a
// concrete type implementing the marker method, mirroring the sealed-variant
// pattern internal/errors uses for its typed error taxonomy, in place of
// Rust's enum.
type Task interface{ isTask() }

// NetworkTask is the subset of an applied Task worth relaying to other
// connected clients: enough to identify what changed, not a full copy of the
// new state (a peer re-fetches the node/clip by id instead).
type NetworkTask interface{ isNetworkTask() }

// UpdateNodeTask replaces an existing node's contents. It does nothing (see
// Apply) if id does not already name a node — use AddNodeTask to create one.
type UpdateNodeTask struct {
	ID   media.ID
	Node *project.Node
}

// AddNodeTask inserts a brand new node, keyed by its own ID field.
type AddNodeTask struct {
	Node *project.Node
}

// AddLinkTask connects Link, replacing any existing link into the same input
// endpoint (an input can only ever be fed by one link).
type AddLinkTask struct {
	Link project.Link
}

// DeleteLinksTask removes links into NodeID. When Property is nil every link
// into any of the node's inputs is removed; otherwise only links into the
// node's input named Property.
type DeleteLinksTask struct {
	NodeID   media.ID
	Property *string
}

// DeleteNodeTask removes a node and every link touching it.
type DeleteNodeTask struct {
	ID media.ID
}

// UpdateClipTask replaces an existing clip's contents, decoded from Clip (a
// raw JSON payload, mirroring original_source's serde_json::Value field —
// the payload's own id is ignored in favor of ID).
type UpdateClipTask struct {
	ID       media.ID
	ClipType project.ClipType
	Clip     json.RawMessage
}

// CreateSourceClipTask registers a freshly uploaded source clip.
type CreateSourceClipTask struct {
	Clip project.SourceClip
}

// CreateCompositedClipTask registers a new composited clip and the output
// node that renders into it.
type CreateCompositedClipTask struct {
	Clip project.CompositedClip
}

func (UpdateNodeTask) isTask()           {}
func (AddNodeTask) isTask()              {}
func (AddLinkTask) isTask()              {}
func (DeleteLinksTask) isTask()          {}
func (DeleteNodeTask) isTask()           {}
func (UpdateClipTask) isTask()           {}
func (CreateSourceClipTask) isTask()     {}
func (CreateCompositedClipTask) isTask() {}

// GetNodeIDNetworkTask tells a peer a new node exists, to be fetched by id.
type GetNodeIDNetworkTask struct{ ID media.ID }

// UpdateNodeNetworkTask tells a peer an existing node changed.
type UpdateNodeNetworkTask struct{ ID media.ID }

// AddLinkNetworkTask relays a link verbatim (small enough not to warrant a
// re-fetch round trip).
type AddLinkNetworkTask struct{ Link project.Link }

// DeleteLinksNetworkTask relays a link deletion verbatim.
type DeleteLinksNetworkTask struct {
	NodeID   media.ID
	Property *string
}

// DeleteNodeNetworkTask relays a node deletion verbatim.
type DeleteNodeNetworkTask struct{ ID media.ID }

// GetSourceClipIDNetworkTask tells a peer a new source clip exists.
type GetSourceClipIDNetworkTask struct{ ID media.ID }

// GetCompositedClipIDNetworkTask tells a peer a new composited clip exists.
type GetCompositedClipIDNetworkTask struct{ ID media.ID }

// UpdateClipNetworkTask tells a peer an existing clip changed.
type UpdateClipNetworkTask struct {
	ID       media.ID
	ClipType project.ClipType
}

func (GetNodeIDNetworkTask) isNetworkTask()           {}
func (UpdateNodeNetworkTask) isNetworkTask()          {}
func (AddLinkNetworkTask) isNetworkTask()             {}
func (DeleteLinksNetworkTask) isNetworkTask()         {}
func (DeleteNodeNetworkTask) isNetworkTask()          {}
func (GetSourceClipIDNetworkTask) isNetworkTask()     {}
func (GetCompositedClipIDNetworkTask) isNetworkTask() {}
func (UpdateClipNetworkTask) isNetworkTask()          {}

// clipRef builds the `clip` property map the node registry's
// getClipIdentifier/the compiler's parseClipRef expect (see
// registry.getClipIdentifier): {"id": <uuid string>, "clip_type": "source"|
// "composited"}. Node.Properties is untyped map[string]any throughout this
// codebase (it round-trips through JSON as a Store is checkpointed/sent over
// the wire), so this is built directly rather than through
// project.ClipIdentifier's default struct JSON encoding, which would encode
// ClipType as a bare integer instead of the string every reader expects.
func clipRef(id media.ID, clipType project.ClipType) map[string]any {
	return map[string]any{"id": id.String(), "clip_type": clipType.String()}
}

// Apply applies every task to store in order, mutating it in place, and
// returns the NetworkTasks a server should relay to its other clients.
// Mirrors original_source's Task::apply_tasks, including
// UpdateNodeTask's defensive cleanup: it only ever updates a node that
// already exists, undoing its own insert (and emitting nothing) when given
// an unknown id, since creating a node is AddNodeTask's job.
//
// Apply invalidates the cache for what it touches (internal/cache's
// NodeModified for an updated node or a link target, ClipModified for an
// updated clip, Clear for a deleted node) and marks the store dirty when the
// returned slice is non-empty. It does not recompile the graph.
func Apply(store *project.Store, c *cache.Cache, batch []Task) []NetworkTask {
	var network []NetworkTask

	for _, t := range batch {
		switch task := t.(type) {
		case UpdateNodeTask:
			_, existed := store.Nodes[task.ID]
			store.Nodes[task.ID] = task.Node
			if !existed {
				delete(store.Nodes, task.ID)
				continue
			}
			c.NodeModified(task.ID, store)
			network = append(network, UpdateNodeNetworkTask{ID: task.ID})

		case AddNodeTask:
			id := task.Node.ID
			store.Nodes[id] = task.Node
			network = append(network, GetNodeIDNetworkTask{ID: id})

		case AddLinkTask:
			filtered := make([]project.Link, 0, len(store.Pipeline.Links))
			for _, l := range store.Pipeline.Links {
				if l.To != task.Link.To {
					filtered = append(filtered, l)
				}
			}
			filtered = append(filtered, task.Link)
			store.Pipeline.Links = filtered
			c.NodeModified(task.Link.To.NodeID, store)
			network = append(network, AddLinkNetworkTask{Link: task.Link})

		case DeleteLinksTask:
			var filtered []project.Link
			for _, l := range store.Pipeline.Links {
				if task.Property == nil {
					if l.To.NodeID != task.NodeID {
						filtered = append(filtered, l)
					}
					continue
				}
				if l.To.NodeID != task.NodeID || l.To.Property != *task.Property {
					filtered = append(filtered, l)
				}
			}
			store.Pipeline.Links = filtered
			c.NodeModified(task.NodeID, store)
			network = append(network, DeleteLinksNetworkTask{NodeID: task.NodeID, Property: task.Property})

		case DeleteNodeTask:
			var filtered []project.Link
			for _, l := range store.Pipeline.Links {
				if l.To.NodeID != task.ID && l.From.NodeID != task.ID {
					filtered = append(filtered, l)
				}
			}
			store.Pipeline.Links = filtered
			delete(store.Nodes, task.ID)
			c.Clear(task.ID)
			network = append(network, DeleteNodeNetworkTask{ID: task.ID})

		case UpdateClipTask:
			switch task.ClipType {
			case project.ClipSource:
				var clip project.SourceClip
				if err := json.Unmarshal(task.Clip, &clip); err != nil {
					continue
				}
				existing, ok := store.Clips.Source[task.ID]
				if !ok {
					continue
				}
				clip.ID = task.ID
				*existing = clip
			case project.ClipComposited:
				var clip project.CompositedClip
				if err := json.Unmarshal(task.Clip, &clip); err != nil {
					continue
				}
				existing, ok := store.Clips.Composited[task.ID]
				if !ok {
					continue
				}
				clip.ID = task.ID
				*existing = clip
			default:
				continue
			}
			c.ClipModified(task.ID, task.ClipType, store)
			network = append(network, UpdateClipNetworkTask{ID: task.ID, ClipType: task.ClipType})

		case CreateSourceClipTask:
			clip := task.Clip
			store.Clips.Source[clip.ID] = &clip
			network = append(network, GetSourceClipIDNetworkTask{ID: clip.ID})

		case CreateCompositedClipTask:
			clip := task.Clip
			store.Clips.Composited[clip.ID] = &clip

			outputNode := project.NewNode(registry.OutputNodeType, media.Nil)
			outputNode.Properties[registry.ClipImportClipProperty] = clipRef(clip.ID, project.ClipComposited)
			store.Nodes[outputNode.ID] = outputNode

			network = append(network, GetCompositedClipIDNetworkTask{ID: clip.ID})

		default:
			panic(fmt.Sprintf("tasks.Apply: unhandled task type %T", t))
		}
	}

	if len(network) > 0 {
		store.MarkDirty()
	}
	return network
}
