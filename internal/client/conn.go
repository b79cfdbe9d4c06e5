package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ajsmith595/videoedit/internal/errors"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/tasks"
	"github.com/ajsmith595/videoedit/internal/wire"
)

// DialTimeout bounds the initial TCP connect.
const DialTimeout = 5 * time.Second

// ChunkHandler receives one rendered segment as SetStore's response
// stream delivers it.
type ChunkHandler func(clipID media.ID, segment uint32, data []byte)

// DurationHandler receives a CompositedClipLength event observed while a
// SetStore response streams, or in direct reply to RequestCompositedClipLength.
type DurationHandler func(clipID media.ID, millis uint64)

// Conn serializes every request/response transaction over one socket to
// the server, matching spec.md §5's ordering rule: "within one socket,
// message ordering is FIFO and any reply must be consumed before the next
// request begins." Multiple client workers may call Conn concurrently;
// mu enforces one transaction at a time.
type Conn struct {
	netConn net.Conn
	mu      sync.Mutex
}

// Dial opens a TCP connection to the server.
func Dial(addr string) (*Conn, error) {
	nc, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return nil, errors.NewConnectError("client.Dial", err)
	}
	return &Conn{netConn: nc}, nil
}

// Close closes the underlying socket.
func (c *Conn) Close() error { return c.netConn.Close() }

// GetStore requests the server's current Store snapshot.
func (c *Conn) GetStore() (*project.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wire.WriteTag(c.netConn, wire.TagGetStore); err != nil {
		return nil, err
	}
	data, err := wire.ReadBlob(c.netConn)
	if err != nil {
		return nil, err
	}
	var store project.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, errors.NewStoreError("client.Conn.GetStore", err)
	}
	return &store, nil
}

// SetStore uploads a new Store and consumes the server's rendered-segment
// reply stream until it sends any tag other than NewChunk/
// CompositedClipLength/AllChunksGenerated (spec.md §6.2's termination
// rule), invoking onChunk/onDuration for each event observed.
func (c *Conn) SetStore(store *project.Store, onChunk ChunkHandler, onDuration DurationHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(store)
	if err != nil {
		return errors.NewStoreError("client.Conn.SetStore", err)
	}
	if err := wire.WriteTag(c.netConn, wire.TagSetStore); err != nil {
		return err
	}
	if err := wire.WriteBlob(c.netConn, data); err != nil {
		return err
	}

	for {
		tag, err := wire.ReadTag(c.netConn)
		if err != nil {
			return err
		}
		switch tag {
		case wire.TagCompositedClipLength:
			id, err := wire.ReadID(c.netConn)
			if err != nil {
				return err
			}
			ms, err := wire.ReadUint64(c.netConn)
			if err != nil {
				return err
			}
			if onDuration != nil {
				onDuration(id, ms)
			}
		case wire.TagNewChunk:
			id, err := wire.ReadID(c.netConn)
			if err != nil {
				return err
			}
			segment, err := wire.ReadUint32(c.netConn)
			if err != nil {
				return err
			}
			blob, err := wire.ReadBlob(c.netConn)
			if err != nil {
				return err
			}
			if onChunk != nil {
				onChunk(id, segment, blob)
			}
		case wire.TagAllChunksGenerated:
			if _, err := wire.ReadID(c.netConn); err != nil {
				return err
			}
			if _, err := wire.ReadUint32(c.netConn); err != nil {
				return err
			}
			if _, err := wire.ReadUint32(c.netConn); err != nil {
				return err
			}
		default:
			// Any other tag terminates the reply stream (spec.md §6.2).
			return nil
		}
	}
}

// UploadFile sends a source clip's media bytes, reporting progress via
// onProgress, mirroring original_source's send_file_with_progress
// (ported as wire.CopyWithProgress).
func (c *Conn) UploadFile(clipID media.ID, path string, onProgress wire.ProgressFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return errors.NewIOError("client.Conn.UploadFile", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.NewIOError("client.Conn.UploadFile", err)
	}

	if err := wire.WriteTag(c.netConn, wire.TagUploadFile); err != nil {
		return err
	}
	if err := wire.WriteID(c.netConn, clipID); err != nil {
		return err
	}
	if err := wire.CopyWithProgress(c.netConn, f, info.Size(), onProgress); err != nil {
		return err
	}
	return wire.WriteTag(c.netConn, wire.TagEndFile)
}

// RequestCompositedClipLength asks the server for a clip's last-known
// render duration.
func (c *Conn) RequestCompositedClipLength(clipID media.ID) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wire.WriteTag(c.netConn, wire.TagCompositedClipLength); err != nil {
		return 0, err
	}
	if err := wire.WriteID(c.netConn, clipID); err != nil {
		return 0, err
	}
	if _, err := wire.ReadID(c.netConn); err != nil {
		return 0, err
	}
	return wire.ReadUint64(c.netConn)
}

// SendTask submits one task-applier mutation to the server, mapping its
// concrete type to the matching wire.Tag, and returns the server's
// derived NetworkTasks still JSON-encoded (callers rarely need to inspect
// them locally; the authoritative Store comes back via the next fetch).
func (c *Conn) SendTask(task tasks.Task) ([]byte, error) {
	tag, err := taskTag(task)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(task)
	if err != nil {
		return nil, errors.NewStoreError("client.Conn.SendTask", err)
	}
	if err := wire.WriteTag(c.netConn, tag); err != nil {
		return nil, err
	}
	if err := wire.WriteBlob(c.netConn, data); err != nil {
		return nil, err
	}
	return wire.ReadBlob(c.netConn)
}

func taskTag(task tasks.Task) (wire.Tag, error) {
	switch task.(type) {
	case tasks.CreateSourceClipTask:
		return wire.TagCreateSourceClip, nil
	case tasks.CreateCompositedClipTask:
		return wire.TagCreateCompositedClip, nil
	case tasks.AddNodeTask:
		return wire.TagCreateNode, nil
	case tasks.UpdateNodeTask:
		return wire.TagUpdateNode, nil
	case tasks.AddLinkTask:
		return wire.TagAddLink, nil
	case tasks.DeleteLinksTask:
		return wire.TagDeleteLinks, nil
	case tasks.UpdateClipTask:
		return wire.TagUpdateClip, nil
	case tasks.DeleteNodeTask:
		return wire.TagDeleteNode, nil
	default:
		return 0, fmt.Errorf("client: no wire tag for task type %T", task)
	}
}

var _ io.Closer = (*Conn)(nil)
