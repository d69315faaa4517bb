package stream

import (
	"bufio"
	"io"

	"github.com/danmuck/bencwire/bencode"
)

// Reader pumps bytes from an io.Reader through an incremental decoder
// and surfaces one complete Bencode value at a time.
type Reader struct {
	br  io.ByteReader
	dec *bencode.Decoder
}

// NewReader returns a Reader decoding from r with the given working
// buffer capacity. r is wrapped in a bufio.Reader unless it already
// reads byte-at-a-time.
func NewReader(r io.Reader, capacity int) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br, dec: bencode.NewDecoder(capacity)}
}

// Next consumes input until one complete value has been decoded and
// returns its flattened byte size. Decode faults inside a value ride
// through to that value's completion so the stream stays framed; the
// fault is returned alongside the nonzero count and the value walks as
// empty. A stray closing byte between values returns
// bencode.ErrUnbalancedNesting on its own.
//
// Next returns io.EOF when the stream ends between values and
// io.ErrUnexpectedEOF when it ends mid-value.
func (r *Reader) Next() (int, error) {
	r.dec.Reset()
	for {
		ch, err := r.br.ReadByte()
		if err != nil {
			if err == io.EOF {
				if r.dec.Pending() {
					return 0, io.ErrUnexpectedEOF
				}
				return 0, io.EOF
			}
			return 0, err
		}
		n, perr := r.dec.Process(ch)
		if n != 0 {
			return n, perr
		}
		if perr != nil && !r.dec.Pending() {
			return 0, perr
		}
	}
}

// ReadValue decodes the next complete value and rebuilds it as a tree.
func (r *Reader) ReadValue() (bencode.Value, error) {
	if _, err := r.Next(); err != nil {
		return bencode.Value{}, err
	}
	return bencode.DecodeValue(r.dec)
}

// Decoder exposes the underlying decoder so a caller can walk tokens in
// place after Next instead of paying for a tree.
func (r *Reader) Decoder() *bencode.Decoder {
	return r.dec
}
