package bencode

import "fmt"

// Token identifies one unit of a decoded value's flattened token stream.
type Token uint8

const (
	TokenString Token = iota
	TokenNumber
	TokenDictOpen
	TokenListOpen
	TokenPop
	TokenEnd
)

func (t Token) String() string {
	switch t {
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenDictOpen:
		return "dict-open"
	case TokenListOpen:
		return "list-open"
	case TokenPop:
		return "pop"
	case TokenEnd:
		return "end"
	default:
		return fmt.Sprintf("token(%d)", uint8(t))
	}
}

const (
	// MaxStringLen is the longest byte string one token can carry. String
	// markers double as the payload length, so lengths above 250 would
	// collide with the structural markers below.
	MaxStringLen = 250

	// MinBufferLen and MaxBufferLen bound a Decoder's working buffer.
	// The upper bound is what the single-byte token cursors of the
	// flattened encoding can address.
	MinBufferLen = 50
	MaxBufferLen = 255
)

// In-buffer marker bytes. String markers are the values 0..250 and carry
// the payload length directly.
const (
	markerNumber byte = 251
	markerDict   byte = 252
	markerList   byte = 253
	markerPop    byte = 254
	markerEnd    byte = 255
)

// parseState tracks what the next input byte means to the decoder.
type parseState uint8

const (
	stateAny        parseState = iota // awaiting a value prefix
	stateLength                       // accumulating string length digits
	stateInteger                      // inside i...e
	stateStringBody                   // copying string payload bytes
)
