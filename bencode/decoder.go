package bencode

// lengthClamp stops the length accumulator well short of integer
// overflow on absurd prefixes; anything past it is already oversized.
const lengthClamp = 1 << 28

// Decoder is an incremental Bencode parser with a fixed working buffer.
// Feed it one byte at a time via Process; when a top-level value
// completes, walk the result with NextToken, AsString, and AsNumber.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf    []byte
	state  parseState
	level  int // open list/dict depth
	length int // string length accumulator (stateLength)
	remain int // string payload countdown (stateStringBody)
	next   int // write cursor while decoding, read cursor while walking
	last   int // start of the most recently walked token's payload
	err    error
}

// NewDecoder returns a Decoder with a working buffer of the given
// capacity, clamped to [MinBufferLen, MaxBufferLen]. Capacity bounds the
// flattened size of one complete value, not of the whole stream.
func NewDecoder(size int) *Decoder {
	if size < MinBufferLen {
		size = MinBufferLen
	}
	if size > MaxBufferLen {
		size = MaxBufferLen
	}
	return &Decoder{buf: make([]byte, size)}
}

// Process consumes exactly one input byte. It returns a nonzero count —
// the flattened byte size of the round just finished — precisely when the
// byte completes a top-level value; otherwise it returns zero.
//
// Faults are reported on the call that detects them. ErrBufferOverflow
// and ErrStringTooLong poison the round: the decoder keeps consuming
// input so it stays aligned with the stream, drops all further buffer
// writes, and reports the same error once more alongside the nonzero
// count when the poisoned value completes. Its token stream then walks
// as empty. A closing 'e' with no open list or dict is reported as
// ErrUnbalancedNesting and the byte is discarded; the round is otherwise
// unaffected.
//
// Completion implicitly rearms the decoder, so back-to-back values can
// be pumped without explicit Reset calls. Walking a result moves the
// shared buffer cursor, however: after NextToken has been used, call
// Reset before feeding the next value's bytes.
func (d *Decoder) Process(ch byte) (int, error) {
	wasClean := d.err == nil
	n, err := d.step(ch)
	if err != nil {
		return n, err
	}
	if wasClean && d.err != nil {
		return n, d.err
	}
	return n, nil
}

func (d *Decoder) step(ch byte) (int, error) {
	switch d.state {
	case stateAny:
		switch {
		case ch >= '0' && ch <= '9':
			d.state = stateLength
			d.length = int(ch - '0')
		case ch == 'i':
			d.emit(markerNumber)
			d.state = stateInteger
		case ch == 'd':
			d.emit(markerDict)
			d.level++
		case ch == 'l':
			d.emit(markerList)
			d.level++
		case ch == 'e':
			if d.level == 0 {
				return 0, ErrUnbalancedNesting
			}
			d.emit(markerPop)
			d.level--
			return d.endItem()
		default:
			// Skipped, so the decoder regains framing on a noisy link.
		}

	case stateLength:
		switch {
		case ch == ':':
			if d.length > MaxStringLen {
				d.fail(ErrStringTooLong)
			} else {
				d.emit(byte(d.length))
			}
			if d.length == 0 {
				d.emit(0)
				return d.endItem()
			}
			d.remain = d.length
			d.state = stateStringBody
		case ch >= '0' && ch <= '9':
			if d.length < lengthClamp {
				d.length = d.length*10 + int(ch-'0')
			}
		}

	case stateStringBody:
		d.emit(ch)
		d.remain--
		if d.remain == 0 {
			d.emit(0)
			return d.endItem()
		}

	case stateInteger:
		switch {
		case ch == 'e':
			d.emit(0)
			return d.endItem()
		case ch >= '0' && ch <= '9', ch == '-':
			d.emit(ch)
		}
	}
	return 0, nil
}

// endItem runs after any single token completes. Inside an open
// collection it hands control back to stateAny; at the top level it
// seals the buffer and finishes the round.
func (d *Decoder) endItem() (int, error) {
	if d.level > 0 {
		d.state = stateAny
		return 0, nil
	}
	d.emit(markerEnd)
	err := d.err
	return d.resetRound(), err
}

// emit appends one byte to the working buffer. Writes on a poisoned
// round are dropped; a write past capacity poisons the round.
func (d *Decoder) emit(b byte) {
	if d.err != nil {
		return
	}
	if d.next >= len(d.buf) {
		d.fail(ErrBufferOverflow)
		return
	}
	d.buf[d.next] = b
	d.next++
}

// fail poisons the current round: the first buffer byte is forced to the
// end marker so the flattened result walks as empty, and no further
// bytes are written until the round resets.
func (d *Decoder) fail(err error) {
	if d.err != nil {
		return
	}
	d.err = err
	d.buf[0] = markerEnd
	if d.next == 0 {
		d.next = 1
	}
}

// Reset abandons or finishes a round and rearms the decoder. It returns
// the number of buffer bytes consumed since the previous reset: called
// right after a completion signal this is the round's flattened size, and
// called after a walk it is the walk position. Reset also rewinds the
// walk cursor, so it restarts traversal of a completed value.
func (d *Decoder) Reset() int {
	return d.resetRound()
}

func (d *Decoder) resetRound() int {
	n := d.next
	d.state = stateAny
	d.level = 0
	d.length = 0
	d.remain = 0
	d.next = 0
	d.last = 0
	d.err = nil
	return n
}

// Pending reports whether the decoder sits in the middle of a value.
// A stream that ends while Pending is true was truncated.
func (d *Decoder) Pending() bool {
	return d.state != stateAny || d.level > 0
}
