package bencode

import (
	"io"
	"strconv"
)

// Encoder serializes values as Bencode through a byte-oriented sink.
// Every call writes through immediately; there is no rollback, and the
// encoder holds no nesting stack. Callers must pair each StartList and
// StartDict with the matching end call themselves. The only failure mode
// is the sink's own write error, which is returned as-is.
//
// Wrap the sink in a bufio.Writer for buffered output; bytes.Buffer
// works directly for in-memory encoding.
type Encoder struct {
	w io.ByteWriter
}

// NewEncoder returns an Encoder emitting through w.
func NewEncoder(w io.ByteWriter) *Encoder {
	return &Encoder{w: w}
}

// Push emits s as a length-prefixed byte string.
func (e *Encoder) Push(s string) error {
	if err := e.pushLen(len(s)); err != nil {
		return err
	}
	for i := 0; i < len(s); i++ {
		if err := e.w.WriteByte(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// PushBytes emits b as a length-prefixed byte string. Arbitrary byte
// values are permitted in the body; nothing is escaped.
func (e *Encoder) PushBytes(b []byte) error {
	if err := e.pushLen(len(b)); err != nil {
		return err
	}
	return e.writeAll(b)
}

// PushInt emits v as i<decimal>e.
func (e *Encoder) PushInt(v int32) error {
	var scratch [16]byte
	out := append(scratch[:0], 'i')
	out = strconv.AppendInt(out, int64(v), 10)
	out = append(out, 'e')
	return e.writeAll(out)
}

// StartList opens a list.
func (e *Encoder) StartList() error { return e.w.WriteByte('l') }

// EndList closes the innermost open list.
func (e *Encoder) EndList() error { return e.w.WriteByte('e') }

// StartDict opens a dictionary.
func (e *Encoder) StartDict() error { return e.w.WriteByte('d') }

// EndDict closes the innermost open dictionary.
func (e *Encoder) EndDict() error { return e.w.WriteByte('e') }

func (e *Encoder) pushLen(n int) error {
	var scratch [24]byte
	out := strconv.AppendInt(scratch[:0], int64(n), 10)
	out = append(out, ':')
	return e.writeAll(out)
}

func (e *Encoder) writeAll(p []byte) error {
	for _, b := range p {
		if err := e.w.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
