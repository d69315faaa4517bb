package bencode

import "errors"

var (
	ErrBufferOverflow    = errors.New("bencode: decode buffer overflow")
	ErrStringTooLong     = errors.New("bencode: string exceeds per-token length cap")
	ErrUnbalancedNesting = errors.New("bencode: unbalanced nesting")
	ErrInvalidNumber     = errors.New("bencode: invalid number")
	ErrDictKey           = errors.New("bencode: dictionary key is not a string")
	ErrTruncatedValue    = errors.New("bencode: truncated token stream")
	ErrUnknownKind       = errors.New("bencode: unknown value kind")
)
