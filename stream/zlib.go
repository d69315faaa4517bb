package stream

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/danmuck/bencwire/bencode"
)

// CompressedReader reads Bencode values out of a zlib-wrapped stream.
type CompressedReader struct {
	*Reader
	zr io.ReadCloser
}

// NewCompressedReader opens the zlib stream in r and decodes values
// from it. The error is the zlib header check.
func NewCompressedReader(r io.Reader, capacity int) (*CompressedReader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &CompressedReader{Reader: NewReader(zr, capacity), zr: zr}, nil
}

// Close releases the decompressor. It does not close the underlying
// reader.
func (r *CompressedReader) Close() error {
	return r.zr.Close()
}

// CompressedWriter encodes Bencode values into a zlib stream.
type CompressedWriter struct {
	*bencode.Encoder
	bw *bufio.Writer
	zw *zlib.Writer
}

// NewCompressedWriter returns a CompressedWriter emitting into w.
func NewCompressedWriter(w io.Writer) *CompressedWriter {
	zw := zlib.NewWriter(w)
	bw := bufio.NewWriter(zw)
	return &CompressedWriter{Encoder: bencode.NewEncoder(bw), bw: bw, zw: zw}
}

// Flush pushes pending bytes through the compressor so a reader on the
// other end can make progress without waiting for Close.
func (w *CompressedWriter) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.zw.Flush()
}

// Close flushes everything and terminates the zlib stream. It does not
// close the underlying writer.
func (w *CompressedWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	return w.zw.Close()
}
