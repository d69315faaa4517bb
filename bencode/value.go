package bencode

// Kind discriminates the variants of a Value.
type Kind uint8

const (
	KindInteger Kind = iota
	KindString
	KindList
	KindDict
)

// Value is a heap-built Bencode value tree, the convenience counterpart
// to the flat token stream. The incremental decoder itself never builds
// one; use DecodeValue when the zero-allocation walk is not worth the
// bookkeeping.
type Value struct {
	Kind    Kind
	Integer int32
	Bytes   []byte
	List    []Value
	Dict    []Member
}

// Member is one dictionary entry. Entries keep encounter order; nothing
// sorts or deduplicates them.
type Member struct {
	Key   []byte
	Value Value
}

// Integer returns an integer Value.
func Integer(n int32) Value {
	return Value{Kind: KindInteger, Integer: n}
}

// String returns a byte-string Value from s.
func String(s string) Value {
	return Value{Kind: KindString, Bytes: []byte(s)}
}

// Bytes returns a byte-string Value. The slice is used as-is.
func Bytes(b []byte) Value {
	return Value{Kind: KindString, Bytes: b}
}

// ListOf returns a list Value of the given items.
func ListOf(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

// DictOf returns a dictionary Value of the given members, in order.
func DictOf(members ...Member) Value {
	return Value{Kind: KindDict, Dict: members}
}

// Pair builds one dictionary member.
func Pair(key string, v Value) Member {
	return Member{Key: []byte(key), Value: v}
}

// PushValue emits v and all of its children through the encoder.
func (e *Encoder) PushValue(v Value) error {
	switch v.Kind {
	case KindInteger:
		return e.PushInt(v.Integer)
	case KindString:
		return e.PushBytes(v.Bytes)
	case KindList:
		if err := e.StartList(); err != nil {
			return err
		}
		for _, item := range v.List {
			if err := e.PushValue(item); err != nil {
				return err
			}
		}
		return e.EndList()
	case KindDict:
		if err := e.StartDict(); err != nil {
			return err
		}
		for _, m := range v.Dict {
			if err := e.PushBytes(m.Key); err != nil {
				return err
			}
			if err := e.PushValue(m.Value); err != nil {
				return err
			}
		}
		return e.EndDict()
	default:
		return ErrUnknownKind
	}
}

// DecodeValue rebuilds the value tree from a just-completed decode
// round, copying payload bytes out of the working buffer so the result
// outlives the next round. The walk cursor must be at the start of the
// round; call Reset first to rewind after an earlier walk.
func DecodeValue(d *Decoder) (Value, error) {
	tok := d.NextToken()
	if tok == TokenEnd {
		return Value{}, ErrTruncatedValue
	}
	return decodeValue(d, tok)
}

func decodeValue(d *Decoder, tok Token) (Value, error) {
	switch tok {
	case TokenNumber:
		n, err := d.AsNumber()
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case TokenString:
		return Bytes(copyPayload(d)), nil
	case TokenListOpen:
		var items []Value
		for {
			t := d.NextToken()
			if t == TokenPop {
				return Value{Kind: KindList, List: items}, nil
			}
			if t == TokenEnd {
				return Value{}, ErrTruncatedValue
			}
			item, err := decodeValue(d, t)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
	case TokenDictOpen:
		var members []Member
		for {
			t := d.NextToken()
			if t == TokenPop {
				return Value{Kind: KindDict, Dict: members}, nil
			}
			if t == TokenEnd {
				return Value{}, ErrTruncatedValue
			}
			if t != TokenString {
				return Value{}, ErrDictKey
			}
			key := copyPayload(d)
			vt := d.NextToken()
			if vt == TokenPop || vt == TokenEnd {
				return Value{}, ErrTruncatedValue
			}
			val, err := decodeValue(d, vt)
			if err != nil {
				return Value{}, err
			}
			members = append(members, Member{Key: key, Value: val})
		}
	default:
		return Value{}, ErrTruncatedValue
	}
}

func copyPayload(d *Decoder) []byte {
	raw := d.AsString()
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}
