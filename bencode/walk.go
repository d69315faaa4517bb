package bencode

import (
	"fmt"
	"strconv"
)

// NextToken advances the read cursor over the flattened buffer and
// returns the kind of the token at the cursor. Call it only between a
// completion signal and the arrival of the next value's bytes; the
// buffer is stable across that window, and Reset rewinds the cursor for
// another pass. TokenEnd is terminal: the cursor stays pinned on it, so
// repeated calls keep returning TokenEnd.
func (d *Decoder) NextToken() Token {
	if d.next >= len(d.buf) {
		return TokenEnd
	}
	ch := d.buf[d.next]
	d.next++
	d.last = d.next
	switch ch {
	case markerNumber:
		for d.next < len(d.buf) && d.buf[d.next] != 0 {
			d.next++
		}
		if d.next < len(d.buf) {
			d.next++ // step over the terminator
		}
		return TokenNumber
	case markerDict:
		return TokenDictOpen
	case markerList:
		return TokenListOpen
	case markerPop:
		return TokenPop
	case markerEnd:
		d.next--
		return TokenEnd
	default:
		// String marker: the byte is the payload length.
		d.next += int(ch) + 1
		return TokenString
	}
}

// AsString returns the payload of the most recent TokenString or
// TokenNumber as a view into the decode buffer. The view is only valid
// until the buffer is reused for the next round; copy it to keep it.
func (d *Decoder) AsString() []byte {
	lo, hi := d.last, d.next-1
	if lo < 0 || hi > len(d.buf) || lo > hi {
		return nil
	}
	return d.buf[lo:hi]
}

// AsNumber parses the most recent token's payload as a signed 32-bit
// decimal integer.
func (d *Decoder) AsNumber() (int32, error) {
	raw := d.AsString()
	n, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return int32(n), nil
}
