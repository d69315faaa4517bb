package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/danmuck/bencwire/bencode"
)

func TestReaderSequence(t *testing.T) {
	r := NewReader(strings.NewReader("i1e4:spamle"), 64)
	d := r.Decoder()

	if n, err := r.Next(); err != nil || n == 0 {
		t.Fatalf("first value: n=%d err=%v", n, err)
	}
	if tok := d.NextToken(); tok != bencode.TokenNumber {
		t.Fatalf("expected number, got %v", tok)
	}
	if got, err := d.AsNumber(); err != nil || got != 1 {
		t.Fatalf("expected 1, got %d err=%v", got, err)
	}

	// Walking moved the cursor; Next rearms the decoder itself.
	if _, err := r.Next(); err != nil {
		t.Fatalf("second value: %v", err)
	}
	if tok := d.NextToken(); tok != bencode.TokenString {
		t.Fatalf("expected string, got %v", tok)
	}
	if got := string(d.AsString()); got != "spam" {
		t.Fatalf("expected spam, got %q", got)
	}

	if _, err := r.Next(); err != nil {
		t.Fatalf("third value: %v", err)
	}
	if tok := d.NextToken(); tok != bencode.TokenListOpen {
		t.Fatalf("expected list open, got %v", tok)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReaderTruncatedValue(t *testing.T) {
	r := NewReader(strings.NewReader("l4:spam"), 64)
	if _, err := r.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReaderStrayCloser(t *testing.T) {
	r := NewReader(strings.NewReader("ei1e"), 64)
	if _, err := r.Next(); !errors.Is(err, bencode.ErrUnbalancedNesting) {
		t.Fatalf("expected ErrUnbalancedNesting, got %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("expected recovery after stray closer, got %v", err)
	}
	d := r.Decoder()
	if tok := d.NextToken(); tok != bencode.TokenNumber {
		t.Fatalf("expected number, got %v", tok)
	}
}

func TestReaderPoisonRidesToCompletion(t *testing.T) {
	input := "60:" + strings.Repeat("x", 60) + "i7e"
	r := NewReader(strings.NewReader(input), 50)

	n, err := r.Next()
	if n == 0 {
		t.Fatalf("expected completion of the poisoned value")
	}
	if !errors.Is(err, bencode.ErrBufferOverflow) {
		t.Fatalf("expected ErrBufferOverflow, got %v", err)
	}

	// The oversized value was consumed whole, so framing is intact.
	if _, err := r.Next(); err != nil {
		t.Fatalf("expected clean value after poison, got %v", err)
	}
	d := r.Decoder()
	if tok := d.NextToken(); tok != bencode.TokenNumber {
		t.Fatalf("expected number, got %v", tok)
	}
	if got, err := d.AsNumber(); err != nil || got != 7 {
		t.Fatalf("expected 7, got %d err=%v", got, err)
	}
}

func TestReadValueTree(t *testing.T) {
	r := NewReader(strings.NewReader("d3:onei1e3:twoi2ee"), 64)
	v, err := r.ReadValue()
	if err != nil {
		t.Fatalf("read value: %v", err)
	}
	if v.Kind != bencode.KindDict {
		t.Fatalf("expected dict, got kind %d", v.Kind)
	}
	if len(v.Dict) != 2 {
		t.Fatalf("expected 2 members, got %d", len(v.Dict))
	}
	if string(v.Dict[0].Key) != "one" || v.Dict[0].Value.Integer != 1 {
		t.Fatalf("unexpected first member: %q=%d", v.Dict[0].Key, v.Dict[0].Value.Integer)
	}
	if string(v.Dict[1].Key) != "two" || v.Dict[1].Value.Integer != 2 {
		t.Fatalf("unexpected second member: %q=%d", v.Dict[1].Key, v.Dict[1].Value.Integer)
	}
}
