package renderpool

import (
	"encoding/gob"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeWorkerPair wires two Workers together over in-memory pipes so the
// message-framing logic (Send/Recv) can be exercised without spawning a
// real subprocess.
func pipeWorkerPair() (*Worker, *Worker) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	left := &Worker{enc: gob.NewEncoder(aw), dec: gob.NewDecoder(br)}
	right := &Worker{enc: gob.NewEncoder(bw), dec: gob.NewDecoder(ar)}
	return left, right
}

func TestWorkerSendRecvRoundTrip(t *testing.T) {
	left, right := pipeWorkerPair()

	want := GeneratePreview{StartChunk: 2, EndChunk: 9}

	go func() {
		require.NoError(t, left.Send(want))
	}()

	got, err := right.Recv()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWorkerSendRecvDistinguishesVariants(t *testing.T) {
	left, right := pipeWorkerPair()

	go func() {
		require.NoError(t, left.Send(OperationFinished{}))
	}()

	got, err := right.Recv()
	require.NoError(t, err)
	assert.IsType(t, OperationFinished{}, got)
}
