package videoserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/ajsmith595/videoedit/internal/cache"
	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/ajsmith595/videoedit/internal/project"
	"github.com/ajsmith595/videoedit/internal/registry"
	"github.com/ajsmith595/videoedit/internal/renderpool"
	"github.com/ajsmith595/videoedit/internal/tasks"
	"github.com/ajsmith595/videoedit/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState(t *testing.T) *State {
	t.Helper()
	require.NoError(t, project.Init(t.TempDir(), true))

	pool, err := renderpool.New(context.Background(), 0, "")
	require.NoError(t, err)

	return &State{
		Store:     project.New(),
		Cache:     cache.New(),
		Registry:  registry.New(),
		Pool:      pool,
		Durations: map[media.ID]uint64{},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHandleGetStoreReturnsStoreJSON(t *testing.T) {
	state := testState(t)
	clip := &project.SourceClip{ID: media.NewID(), Name: "clip.mp4"}
	state.Store.Clips.Source[clip.ID] = clip

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- dispatch(wire.TagGetStore, server, state, testLogger()) }()

	data, err := wire.ReadBlob(client)
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	var got project.Store
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got.Clips.Source, clip.ID)
}

func TestHandleSetStoreReplacesStoreAndAcks(t *testing.T) {
	state := testState(t)

	next := project.New()
	clip := &project.SourceClip{ID: media.NewID(), Name: "new.mp4"}
	next.Clips.Source[clip.ID] = clip
	payload, err := json.Marshal(next)
	require.NoError(t, err)

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- dispatch(wire.TagSetStore, server, state, testLogger()) }()

	require.NoError(t, wire.WriteBlob(client, payload))

	tag, err := wire.ReadTag(client)
	require.NoError(t, err)
	assert.Equal(t, wire.TagResponse, tag)
	require.NoError(t, <-errCh)

	assert.Contains(t, state.Store.Clips.Source, clip.ID)
	assert.True(t, state.Store.Dirty())
}

func TestHandleTaskCreateSourceClipAppliesAndEchoesNetworkTask(t *testing.T) {
	state := testState(t)

	clip := project.SourceClip{ID: media.NewID(), Name: "uploaded.mp4"}
	payload, err := json.Marshal(tasks.CreateSourceClipTask{Clip: clip})
	require.NoError(t, err)

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- dispatch(wire.TagCreateSourceClip, server, state, testLogger()) }()

	require.NoError(t, wire.WriteBlob(client, payload))

	reply, err := wire.ReadBlob(client)
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	var network []tasks.GetSourceClipIDNetworkTask
	require.NoError(t, json.Unmarshal(reply, &network))
	require.Len(t, network, 1)
	assert.Equal(t, clip.ID, network[0].ID)
	assert.Contains(t, state.Store.Clips.Source, clip.ID)
}

func TestHandleUploadFileWritesBytesAndMarksUploaded(t *testing.T) {
	state := testState(t)
	clip := &project.SourceClip{ID: media.NewID(), Name: "upload.mp4"}
	state.Store.Clips.Source[clip.ID] = clip

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- dispatch(wire.TagUploadFile, server, state, testLogger()) }()

	body := []byte("fake media bytes")
	require.NoError(t, wire.WriteID(client, clip.ID))
	require.NoError(t, wire.WriteFile(client, bytes.NewReader(body), int64(len(body))))
	require.NoError(t, wire.WriteTag(client, wire.TagEndFile))
	require.NoError(t, <-errCh)

	require.NotNil(t, clip.FileLocation)
	got, err := os.ReadFile(*clip.FileLocation)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	assert.Equal(t, project.Uploaded, clip.Status)
}

func TestHandleCompositedClipLengthReturnsKnownDuration(t *testing.T) {
	state := testState(t)
	id := media.NewID()
	state.Durations[id] = 45000

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- dispatch(wire.TagCompositedClipLength, server, state, testLogger()) }()

	require.NoError(t, wire.WriteID(client, id))

	gotID, err := wire.ReadID(client)
	require.NoError(t, err)
	gotMS, err := wire.ReadUint64(client)
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	assert.Equal(t, id, gotID)
	assert.EqualValues(t, 45000, gotMS)
}

func TestDispatchRejectsUnhandledTag(t *testing.T) {
	state := testState(t)
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	err := dispatch(wire.TagGetVideoPreview, server, state, testLogger())
	assert.Error(t, err)
}
