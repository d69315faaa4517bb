package relay

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/bencwire/bencode"
	"github.com/danmuck/bencwire/internal/testutil/testlog"
	"github.com/danmuck/bencwire/stream"
)

func TestServiceAcksDecodedValues(t *testing.T) {
	testlog.Start(t)

	svc, addr, shutdown := startService(t, testConfig())
	defer shutdown()

	conn := dial(t, addr)
	defer conn.Close()
	acks := stream.NewReader(conn, 64)

	if _, err := conn.Write([]byte("d3:foo3:bare")); err != nil {
		t.Fatalf("write value: %v", err)
	}
	ack := readAck(t, acks)
	if ackInt(t, ack, "ok") != 1 {
		t.Fatalf("expected accepted ack, got %+v", ack)
	}
	if got := ackInt(t, ack, "size"); got != 13 {
		t.Fatalf("expected flattened size 13, got %d", got)
	}

	if _, err := conn.Write([]byte("i42e")); err != nil {
		t.Fatalf("write second value: %v", err)
	}
	ack = readAck(t, acks)
	if ackInt(t, ack, "ok") != 1 {
		t.Fatalf("expected accepted ack for second value, got %+v", ack)
	}

	status := svc.Status()
	if status.Values != 2 {
		t.Fatalf("expected 2 decoded values, got %d", status.Values)
	}
	if status.DecodeErrors != 0 {
		t.Fatalf("expected no decode errors, got %d", status.DecodeErrors)
	}
	if len(status.Recent) != 2 {
		t.Fatalf("expected 2 recent records, got %d", len(status.Recent))
	}
	if status.Recent[0].Kind != "dict" || status.Recent[1].Kind != "integer" {
		t.Fatalf("unexpected recent kinds: %+v", status.Recent)
	}
	if status.Recent[0].Tokens != 4 {
		t.Fatalf("expected 4 tokens for the dict, got %d", status.Recent[0].Tokens)
	}
}

func TestServiceRejectsPoisonedValueAndRecovers(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.DecodeCapacity = 50
	svc, addr, shutdown := startService(t, cfg)
	defer shutdown()

	conn := dial(t, addr)
	defer conn.Close()
	acks := stream.NewReader(conn, 64)

	oversized := "60:" + strings.Repeat("x", 60)
	if _, err := conn.Write([]byte(oversized)); err != nil {
		t.Fatalf("write oversized value: %v", err)
	}
	ack := readAck(t, acks)
	if ackInt(t, ack, "ok") != 0 {
		t.Fatalf("expected rejected ack, got %+v", ack)
	}
	if got := ackString(t, ack, "fault"); got != "overflow" {
		t.Fatalf("expected overflow fault, got %q", got)
	}

	// The oversized value was consumed whole; the connection keeps working.
	if _, err := conn.Write([]byte("4:spam")); err != nil {
		t.Fatalf("write follow-up value: %v", err)
	}
	ack = readAck(t, acks)
	if ackInt(t, ack, "ok") != 1 {
		t.Fatalf("expected accepted ack after poison, got %+v", ack)
	}

	status := svc.Status()
	if status.DecodeErrors != 1 {
		t.Fatalf("expected 1 decode error, got %d", status.DecodeErrors)
	}
	if status.Values != 1 {
		t.Fatalf("expected 1 decoded value, got %d", status.Values)
	}
}

func TestServiceCompressedIngest(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.Compressed = true
	_, addr, shutdown := startService(t, cfg)
	defer shutdown()

	conn := dial(t, addr)
	defer conn.Close()
	acks := stream.NewReader(conn, 64)

	zw := stream.NewCompressedWriter(conn)
	v := bencode.DictOf(bencode.Pair("seq", bencode.Integer(1)))
	if err := zw.PushValue(v); err != nil {
		t.Fatalf("push value: %v", err)
	}
	if err := zw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Acks come back plain even though ingest is zlib-wrapped.
	ack := readAck(t, acks)
	if ackInt(t, ack, "ok") != 1 {
		t.Fatalf("expected accepted ack, got %+v", ack)
	}
}

func TestServiceStatusRingBounded(t *testing.T) {
	testlog.Start(t)

	cfg := testConfig()
	cfg.StatusRingSize = 2
	svc, addr, shutdown := startService(t, cfg)
	defer shutdown()

	conn := dial(t, addr)
	defer conn.Close()
	acks := stream.NewReader(conn, 64)

	for _, wire := range []string{"i1e", "i2e", "i3e"} {
		if _, err := conn.Write([]byte(wire)); err != nil {
			t.Fatalf("write %q: %v", wire, err)
		}
		readAck(t, acks)
	}

	status := svc.Status()
	if status.Values != 3 {
		t.Fatalf("expected 3 decoded values, got %d", status.Values)
	}
	if len(status.Recent) != 2 {
		t.Fatalf("expected ring capped at 2, got %d", len(status.Recent))
	}
}

func TestSummarizeNestedValue(t *testing.T) {
	d := bencode.NewDecoder(128)
	wire := "ld3:agei30eeli1ei2eee"
	for i := 0; i < len(wire); i++ {
		if _, err := d.Process(wire[i]); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	sum := summarize(d)
	if sum.kind != "list" {
		t.Fatalf("expected list, got %q", sum.kind)
	}
	if sum.depth != 2 {
		t.Fatalf("expected depth 2, got %d", sum.depth)
	}
	if sum.tokens != 10 {
		t.Fatalf("expected 10 tokens, got %d", sum.tokens)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 2 * time.Second
	cfg.WriteTimeout = 2 * time.Second
	return cfg
}

// startService serves on an ephemeral port and returns the dial address
// plus a shutdown func that asserts a clean accept-loop exit.
func startService(t *testing.T, cfg Config) (*Service, string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	svc := NewService(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx, ln)
	}()

	shutdown := func() {
		cancel()
		if err := <-done; err != nil {
			t.Fatalf("serve exit err: %v", err)
		}
	}
	return svc, ln.Addr().String(), shutdown
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readAck(t *testing.T, acks *stream.Reader) bencode.Value {
	t.Helper()
	v, err := acks.ReadValue()
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if v.Kind != bencode.KindDict {
		t.Fatalf("expected ack dict, got kind %d", v.Kind)
	}
	return v
}

func ackField(t *testing.T, ack bencode.Value, key string) bencode.Value {
	t.Helper()
	for _, m := range ack.Dict {
		if string(m.Key) == key {
			return m.Value
		}
	}
	t.Fatalf("ack missing %q field: %+v", key, ack)
	return bencode.Value{}
}

func ackInt(t *testing.T, ack bencode.Value, key string) int32 {
	t.Helper()
	return ackField(t, ack, key).Integer
}

func ackString(t *testing.T, ack bencode.Value, key string) string {
	t.Helper()
	return string(ackField(t, ack, key).Bytes)
}
