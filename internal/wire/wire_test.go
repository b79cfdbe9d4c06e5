package wire

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenPath resolves a golden file path relative to repo root (this
// package sits at internal/wire).
func goldenPath(name string) string { return filepath.Join("..", "..", "tests", "golden", name) }

func readGolden(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(goldenPath(name))
	require.NoError(t, err)
	return b
}

func TestWriteTagGetStore_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTag(&buf, TagGetStore))
	assert.Equal(t, readGolden(t, "wire_get_store.bin"), buf.Bytes())
}

func TestWriteBlobSetStore_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTag(&buf, TagSetStore))
	require.NoError(t, WriteBlob(&buf, []byte(`{"nodes":{}}`)))
	assert.Equal(t, readGolden(t, "wire_set_store_blob.bin"), buf.Bytes())
}

func TestNewChunkHeader_Golden(t *testing.T) {
	clipID := media.ID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}

	var buf bytes.Buffer
	require.NoError(t, WriteTag(&buf, TagNewChunk))
	require.NoError(t, WriteID(&buf, clipID))
	require.NoError(t, WriteUint32(&buf, 3))
	require.NoError(t, WriteUint64(&buf, 1024))
	assert.Equal(t, readGolden(t, "wire_new_chunk_header.bin"), buf.Bytes())
}

func TestCompositedClipLength_Golden(t *testing.T) {
	clipID := media.ID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}

	var buf bytes.Buffer
	require.NoError(t, WriteTag(&buf, TagCompositedClipLength))
	require.NoError(t, WriteID(&buf, clipID))
	require.NoError(t, WriteUint64(&buf, 45000))
	assert.Equal(t, readGolden(t, "wire_composited_clip_length.bin"), buf.Bytes())
}

func TestReadTagRejectsUnknownByte(t *testing.T) {
	_, err := ReadTag(bytes.NewReader([]byte{0xFF}))
	assert.Error(t, err)
}

func TestReadTagRoundTripsEveryKnownTag(t *testing.T) {
	for tag := range tagNames {
		var buf bytes.Buffer
		require.NoError(t, WriteTag(&buf, tag))
		got, err := ReadTag(&buf)
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	}
}

func TestIDRoundTrip(t *testing.T) {
	id := media.NewID()
	var buf bytes.Buffer
	require.NoError(t, WriteID(&buf, id))
	got, err := ReadID(&buf)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestBlobRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlob(&buf, []byte("hello world")))
	got, err := ReadBlob(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got)
}

func TestCopyWithProgressReportsIncreasingPercent(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 4096)
	var out bytes.Buffer
	var lastPct float64
	var calls int
	err := CopyWithProgress(&out, bytes.NewReader(data), int64(len(data)), func(pct float64, n int64) {
		calls++
		assert.GreaterOrEqual(t, pct, lastPct)
		lastPct = pct
	})
	require.NoError(t, err)
	assert.Greater(t, calls, 0)
	assert.InDelta(t, 100.0, lastPct, 0.01)

	var dst bytes.Buffer
	require.NoError(t, ReadFile(&out, &dst))
	assert.Equal(t, data, dst.Bytes())
}
