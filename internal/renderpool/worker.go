package renderpool

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os/exec"

	"github.com/ajsmith595/videoedit/internal/errors"
)

// Worker is one spawned render-backend subprocess, communicating over its
// own stdin/stdout via gob-encoded Messages. Lifecycle management (Start/
// Wait/Kill, capturing stderr for diagnostics) follows the same shape as
// ffmpeg.Process in ThirdCoastInteractive-Rewind; the IPC framing itself
// has no equivalent there, since that code shells out to ffmpeg directly
// rather than maintaining a long-lived worker process. It is grounded
// instead on gst_process.rs's ipc-channel-based Process (handle, sender,
// receiver) triple, translated to Go's stdin/stdout pipes since neither
// ipc-channel nor a Go binding for it is available here.
type Worker struct {
	cmd    *exec.Cmd
	enc    *gob.Encoder
	dec    *gob.Decoder
	stderr io.ReadCloser
}

// StartWorker spawns the render-backend executable at path and wires up its
// stdin/stdout as a gob message channel. The caller owns ctx's lifetime:
// canceling it kills the subprocess.
func StartWorker(ctx context.Context, path string, args ...string) (*Worker, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.NewIOError("renderpool.StartWorker", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.NewIOError("renderpool.StartWorker", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.NewIOError("renderpool.StartWorker", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.NewIOError("renderpool.StartWorker", err)
	}

	return &Worker{
		cmd:    cmd,
		enc:    gob.NewEncoder(stdin),
		dec:    gob.NewDecoder(stdout),
		stderr: stderr,
	}, nil
}

// Send writes one Message to the worker.
func (w *Worker) Send(msg Message) error {
	if err := w.enc.Encode(&msg); err != nil {
		return errors.NewIOError("renderpool.Worker.Send", err)
	}
	return nil
}

// Recv blocks for the worker's next Message.
func (w *Worker) Recv() (Message, error) {
	var msg Message
	if err := w.dec.Decode(&msg); err != nil {
		return nil, errors.NewIOError("renderpool.Worker.Recv", err)
	}
	return msg, nil
}

// Wait blocks until the worker process exits, returning its stderr output
// alongside any exit error.
func (w *Worker) Wait() error {
	stderr, _ := io.ReadAll(w.stderr)
	if err := w.cmd.Wait(); err != nil {
		return errors.NewIOError("renderpool.Worker.Wait", fmt.Errorf("%w: %s", err, stderr))
	}
	return nil
}

// Kill terminates the worker process immediately.
func (w *Worker) Kill() error {
	if w.cmd.Process == nil {
		return nil
	}
	return w.cmd.Process.Kill()
}
