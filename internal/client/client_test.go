package client

import (
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, store *project.Store) (*Client, net.Conn) {
	t.Helper()
	require.NoError(t, project.Init(t.TempDir(), false))

	conn, server := pipeConn()
	return &Client{
		log:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		conn:    conn,
		state:   NewSharedState(store),
		emitter: NewEmitter(8),
	}, server
}

func TestNextPendingUploadFindsLocalOnlyClip(t *testing.T) {
	store := project.New()
	path := "/tmp/source.mp4"
	clip := &project.SourceClip{ID: media.NewID(), Status: project.LocalOnly, OriginalFileLocation: &path}
	store.Clips.Source[clip.ID] = clip

	c, server := testClient(t, store)
	defer server.Close()

	id, got, ok := c.nextPendingUpload()
	require.True(t, ok)
	assert.Equal(t, clip.ID, id)
	assert.Equal(t, path, got)
}

func TestNextPendingUploadSkipsUploadedClip(t *testing.T) {
	store := project.New()
	clip := &project.SourceClip{ID: media.NewID(), Status: project.Uploaded}
	store.Clips.Source[clip.ID] = clip

	c, server := testClient(t, store)
	defer server.Close()

	_, _, ok := c.nextPendingUpload()
	assert.False(t, ok)
}

func TestRequestPreviewDropsDuplicateWhileInFlight(t *testing.T) {
	store := project.New()
	c, server := testClient(t, store)
	defer server.Close()

	clipID := media.NewID()
	c.RequestPreview(clipID)
	c.state.Previews[clipID] = PreviewRequesting

	c.RequestPreview(clipID)

	unlock := c.state.Lock()
	defer unlock()
	assert.Equal(t, PreviewRequesting, c.state.Previews[clipID])
}

func TestRequestPreviewAllowsReRequestAfterDownloaded(t *testing.T) {
	store := project.New()
	c, server := testClient(t, store)
	defer server.Close()

	clipID := media.NewID()
	c.state.Previews[clipID] = PreviewDownloaded

	c.RequestPreview(clipID)

	unlock := c.state.Lock()
	defer unlock()
	assert.Equal(t, PreviewRequested, c.state.Previews[clipID])
}

func TestNextRequestedPreviewTransitionsToRequesting(t *testing.T) {
	store := project.New()
	c, server := testClient(t, store)
	defer server.Close()

	clipID := media.NewID()
	c.state.Previews[clipID] = PreviewRequested

	got, ok := c.nextRequestedPreview()
	require.True(t, ok)
	assert.Equal(t, clipID, got)

	unlock := c.state.Lock()
	defer unlock()
	assert.Equal(t, PreviewRequesting, c.state.Previews[clipID])
}

func TestWriteChunkWritesBytesToChunkFileLocation(t *testing.T) {
	store := project.New()
	clip := &project.CompositedClip{ID: media.NewID(), Name: "out"}
	store.Clips.Composited[clip.ID] = clip

	c, server := testClient(t, store)
	defer server.Close()

	c.writeChunk(clip.ID, 3, []byte("hello"))

	data, err := os.ReadFile(clip.ChunkFileLocation(3))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestPushStoreMarksCleanOnSuccess(t *testing.T) {
	store := project.New()
	store.MarkDirty()

	c, server := testClient(t, store)
	defer server.Close()

	done := make(chan struct{})
	go func() {
		c.pushStore()
		close(done)
	}()

	tag, err := wire.ReadTag(server)
	require.NoError(t, err)
	assert.Equal(t, wire.TagSetStore, tag)
	_, err = wire.ReadBlob(server)
	require.NoError(t, err)
	require.NoError(t, wire.WriteTag(server, wire.TagResponse))

	<-done
	assert.False(t, c.state.Store.Dirty())
}
