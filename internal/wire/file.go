package wire

import (
	"io"

	"github.com/ajsmith595/videoedit/internal/errors"
)

// ProgressFunc is called after each chunk of a CopyWithProgress transfer
// with the percentage complete (0-100) and the cumulative byte count,
// mirroring original_source's send_file_with_progress callback signature
// `Fn(f64, usize)`.
type ProgressFunc func(percent float64, bytesSoFar int64)

// progressWriter is the Go equivalent of original_source's ProgressReader
// wrapper: rather than wrapping the reader (as the Rust crate
// progress_streams does), this wraps the writer side of io.Copy, since
// io.Copy always drives reads from src into dst and either side can be
// instrumented. No pack repo depends on a progress-tracking stream
// wrapper, so this is a small stdlib-only adapter rather than a pulled-in
// dependency (see DESIGN.md's internal/wire entry).
type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	onChunk ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.onChunk != nil {
		pct := 100 * float64(p.written) / float64(p.total)
		p.onChunk(pct, p.written)
	}
	return n, err
}

// CopyWithProgress sends an 8-byte length prefix followed by size
// bytes copied from src, invoking onProgress after every underlying Write.
// Mirrors send_file_with_progress.
func CopyWithProgress(w io.Writer, src io.Reader, size int64, onProgress ProgressFunc) error {
	if err := WriteUint64(w, uint64(size)); err != nil {
		return err
	}
	pw := &progressWriter{w: w, total: size, onChunk: onProgress}
	if _, err := io.CopyN(pw, src, size); err != nil {
		return errors.NewIOError("wire.CopyWithProgress", err)
	}
	return nil
}

// WriteFile sends an 8-byte length prefix followed by size bytes copied
// from src, with no progress callback. Mirrors send_file.
func WriteFile(w io.Writer, src io.Reader, size int64) error {
	return CopyWithProgress(w, src, size, nil)
}

// ReadFile reads an 8-byte length prefix, then copies exactly that many
// bytes into dst. Mirrors receive_file.
func ReadFile(r io.Reader, dst io.Writer) error {
	n, err := ReadUint64(r)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(dst, r, int64(n)); err != nil {
		return errors.NewIOError("wire.ReadFile", err)
	}
	return nil
}
