package stream

import (
	"bufio"
	"io"

	"github.com/danmuck/bencwire/bencode"
)

// Writer couples an encoder to a buffered output stream. All of the
// encoder's push methods are promoted; call Flush to drain the buffer
// to the underlying writer.
type Writer struct {
	*bencode.Encoder
	bw *bufio.Writer
}

// NewWriter returns a Writer emitting into w through a buffer of the
// given size. A non-positive size falls back to the bufio default.
func NewWriter(w io.Writer, size int) *Writer {
	bw := bufio.NewWriterSize(w, size)
	return &Writer{Encoder: bencode.NewEncoder(bw), bw: bw}
}

// Flush writes buffered bytes through to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
