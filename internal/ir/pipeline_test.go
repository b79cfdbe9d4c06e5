package ir

import (
	"strings"
	"testing"

	"github.com/ajsmith595/videoedit/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveDanglingPrunesDeadEnds(t *testing.T) {
	p := New()
	src := NewNode("videotestsrc")
	dead := NewNode("videoconvert")
	p.AddNode(src)
	p.AddNode(dead)
	p.Link(src, dead)

	p.removeDangling()

	assert.NotContains(t, p.Nodes, src.ID, "source should be pruned once its only consumer is gone")
	assert.NotContains(t, p.Nodes, dead.ID, "dangling sink-less node should be pruned")
}

func TestRemoveDanglingKeepsTerminals(t *testing.T) {
	p := New()
	sink := NewNode("filesink")
	p.AddNode(sink)

	p.removeDangling()

	assert.Contains(t, p.Nodes, sink.ID, "filesink must survive even with zero outgoing links")
}

func TestHandleSplitsInsertsTeeForFanout(t *testing.T) {
	p := New()
	conv := NewNode("videoconvert")
	sinkA := NewNode("filesink")
	sinkB := NewNode("filesink")
	p.AddNode(conv)
	p.AddNode(sinkA)
	p.AddNode(sinkB)
	p.Link(conv, sinkA)
	p.Link(conv, sinkB)

	p.handleSplits()

	var teeCount, encoderCount int
	for _, n := range p.Nodes {
		if n.Kind == "tee" {
			teeCount++
		}
		if n.IsEncoder() {
			encoderCount++
		}
	}
	assert.Equal(t, 1, teeCount, "exactly one tee should be inserted for the fan-out point")
	assert.Equal(t, 1, encoderCount, "exactly one encoder alias should feed the tee")

	queueA, decoderA := splitChainFor(t, p, sinkA.ID)
	queueB, decoderB := splitChainFor(t, p, sinkB.ID)

	assert.NotEqual(t, decoderA, decoderB, "each fanout consumer must get its own decoder")
	assert.NotEqual(t, queueA, queueB, "each fanout consumer must get its own queue")

	teeFromA := upstreamOf(t, p, queueA)
	teeFromB := upstreamOf(t, p, queueB)
	require.NotEmpty(t, teeFromA)
	require.NotEmpty(t, teeFromB)
	assert.Equal(t, teeFromA, teeFromB, "both queues must be fed by the same tee")
	assert.Equal(t, "tee", p.Nodes[teeFromA].Kind)
}

// splitChainFor walks sinkID's upstream link back to its queue+decoder pair,
// asserting the shape handleSplits is expected to build for each original
// fan-out consumer: sink <- decoder <- queue <- (shared) tee.
func splitChainFor(t *testing.T, p *Pipeline, sinkID string) (queueID, decoderID string) {
	t.Helper()
	decoderID = upstreamOf(t, p, sinkID)
	require.NotEmpty(t, decoderID, "sink %s must have an upstream node", sinkID)
	require.True(t, p.Nodes[decoderID].IsDecoder(), "node feeding sink %s must be a decoder, got kind %q", sinkID, p.Nodes[decoderID].Kind)

	queueID = upstreamOf(t, p, decoderID)
	require.NotEmpty(t, queueID, "decoder %s must have an upstream node", decoderID)
	require.Equal(t, "queue", p.Nodes[queueID].Kind, "node feeding decoder %s must be a queue", decoderID)

	return queueID, decoderID
}

// upstreamOf returns the id of the node linked directly into toID, or "" if
// none is found.
func upstreamOf(t *testing.T, p *Pipeline, toID string) string {
	t.Helper()
	for _, l := range p.Links {
		if l.To.ID == toID {
			return l.From.ID
		}
	}
	return ""
}

func TestConvertAliasesExpandsVideoEncoder(t *testing.T) {
	p := New()
	src := NewNode("videotestsrc")
	enc := NewEncoder(media.Video)
	sink := NewNode("filesink")
	p.AddNode(src)
	p.AddNode(enc)
	p.AddNode(sink)
	p.Link(src, enc)
	p.Link(enc, sink)

	p.convertAliases()

	for id := range p.Nodes {
		assert.NotEqual(t, enc.ID, id, "alias node should be removed after expansion")
	}
	var foundEncoder, foundParser bool
	for _, n := range p.Nodes {
		if n.Kind == "nvh264enc" {
			foundEncoder = true
		}
		if n.Kind == "h264parse" {
			foundParser = true
		}
	}
	require.True(t, foundEncoder, "expansion should include the video encoder element")
	require.True(t, foundParser, "expansion should include h264parse")
}

func TestToPipelineTextRendersLinksAndNodes(t *testing.T) {
	p := New()
	src := NewNode("videotestsrc")
	sink := NewNode("filesink")
	p.AddNode(src)
	p.AddNode(sink)
	p.Link(src, sink)

	text := p.ToPipelineText()

	assert.True(t, strings.Contains(text, "videotestsrc"))
	assert.True(t, strings.Contains(text, "filesink"))
	assert.True(t, strings.Contains(text, "!"))
}
