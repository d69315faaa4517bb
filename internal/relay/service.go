package relay

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/bencwire/bencode"
	"github.com/danmuck/bencwire/internal/logging"
	"github.com/danmuck/bencwire/stream"
)

// Service ingests streams of Bencode values over TCP. Each connection
// carries its own incremental decoder; every completed value is
// summarized, counted, and acknowledged with a small Bencode dict.
type Service struct {
	cfg Config
	log zerolog.Logger

	started time.Time

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	clientCount atomic.Int64

	statsMu      sync.Mutex
	values       uint64
	flattened    uint64
	decodeErrors uint64
	recent       []ValueRecord
}

// ValueRecord summarizes one decoded value for the status API.
type ValueRecord struct {
	Remote    string    `json:"remote"`
	Kind      string    `json:"kind"`
	Flattened int       `json:"flattened"`
	Tokens    int       `json:"tokens"`
	Depth     int       `json:"depth"`
	At        time.Time `json:"at"`
}

// Status is a point-in-time snapshot of one relay instance.
type Status struct {
	RelayID      string        `json:"relay_id"`
	ListenAddr   string        `json:"listen_addr"`
	Compressed   bool          `json:"compressed"`
	Uptime       string        `json:"uptime"`
	ActiveConns  int64         `json:"active_conns"`
	Values       uint64        `json:"values_decoded"`
	Flattened    uint64        `json:"flattened_bytes"`
	DecodeErrors uint64        `json:"decode_errors"`
	Recent       []ValueRecord `json:"recent"`
}

// NewService returns a relay for the given configuration.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:     cfg.WithDefaults(),
		log:     logging.Named("relay"),
		started: time.Now(),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Run listens on the configured addresses and blocks until a signal
// arrives or a listener fails.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.log.Info().
		Str("relay", s.cfg.RelayID).
		Str("addr", ln.Addr().String()).
		Bool("compressed", s.cfg.Compressed).
		Msg("ingest listening")

	adminErr := make(chan error, 1)
	if addr := strings.TrimSpace(s.cfg.AdminListenAddr); addr != "" {
		go func() {
			adminErr <- s.serveAdmin(ctx, addr)
		}()
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx, ln)
	}()
	select {
	case err := <-serveErr:
		return err
	case err := <-adminErr:
		if err != nil {
			return err
		}
		return <-serveErr
	}
}

// Serve runs the ingest accept loop on an existing listener until ctx
// ends.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	go func() {
		<-ctx.Done()
		s.closeAllConns()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.trackConn(conn)
		go s.handleConn(conn)
	}
}

// Status returns a snapshot for the admin API. The recent list is
// oldest-first and bounded by StatusRingSize.
func (s *Service) Status() Status {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	recent := make([]ValueRecord, len(s.recent))
	copy(recent, s.recent)
	return Status{
		RelayID:      s.cfg.RelayID,
		ListenAddr:   s.cfg.ListenAddr,
		Compressed:   s.cfg.Compressed,
		Uptime:       time.Since(s.started).String(),
		ActiveConns:  s.clientCount.Load(),
		Values:       s.values,
		Flattened:    s.flattened,
		DecodeErrors: s.decodeErrors,
		Recent:       recent,
	}
}

// handleConn decodes values off one connection until it closes. Decode
// faults are counted and acknowledged, never fatal to the connection;
// only socket-level failures end the loop early.
func (s *Service) handleConn(conn net.Conn) {
	defer conn.Close()
	defer s.untrackConn(conn)
	remote := conn.RemoteAddr().String()
	active := s.clientCount.Add(1)
	RecordConnectionOpened(s.cfg.RelayID)
	s.log.Info().Str("remote", remote).Int64("active_clients", active).Msg("client connected")
	defer func() {
		remaining := s.clientCount.Add(-1)
		RecordConnectionClosed(s.cfg.RelayID)
		s.log.Info().Str("remote", remote).Int64("active_clients", remaining).Msg("client disconnected")
	}()

	reader, err := s.openStream(conn)
	if err != nil {
		s.log.Warn().Str("remote", remote).Err(err).Msg("open ingest stream")
		return
	}
	acks := bufio.NewWriter(conn)
	enc := bencode.NewEncoder(acks)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		n, err := reader.Next()
		switch {
		case err == nil:
			rec := s.observeValue(remote, reader.Decoder(), n)
			s.log.Debug().
				Str("remote", remote).
				Str("kind", rec.Kind).
				Int("flattened", rec.Flattened).
				Int("tokens", rec.Tokens).
				Msg("value decoded")
			if err := s.writeAck(conn, enc, acks, n, ""); err != nil {
				s.log.Warn().Str("remote", remote).Err(err).Msg("write ack")
				return
			}
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, io.ErrUnexpectedEOF):
			s.recordFault("truncated")
			s.log.Warn().Str("remote", remote).Msg("stream truncated mid-value")
			return
		case n != 0 || isDecodeFault(err):
			kind := faultKind(err)
			s.recordFault(kind)
			s.log.Warn().Str("remote", remote).Str("fault", kind).Err(err).Msg("value rejected")
			if err := s.writeAck(conn, enc, acks, 0, kind); err != nil {
				s.log.Warn().Str("remote", remote).Err(err).Msg("write ack")
				return
			}
		default:
			s.log.Warn().Str("remote", remote).Err(err).Msg("read failed")
			return
		}
	}
}

// openStream builds the per-connection value reader. In compressed mode
// the zlib header is consumed right here, so the read deadline has to be
// armed before the wrapper is constructed.
func (s *Service) openStream(conn net.Conn) (*stream.Reader, error) {
	if !s.cfg.Compressed {
		return stream.NewReader(conn, s.cfg.DecodeCapacity), nil
	}
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	cr, err := stream.NewCompressedReader(conn, s.cfg.DecodeCapacity)
	if err != nil {
		return nil, err
	}
	return cr.Reader, nil
}

// writeAck emits one acknowledgement dict. Acks are always written
// plain, outside any zlib layer, so lightweight probes can read them.
func (s *Service) writeAck(conn net.Conn, enc *bencode.Encoder, acks *bufio.Writer, flattened int, fault string) error {
	ack := bencode.DictOf(
		bencode.Pair("ok", bencode.Integer(1)),
		bencode.Pair("size", bencode.Integer(int32(flattened))),
	)
	if fault != "" {
		ack = bencode.DictOf(
			bencode.Pair("ok", bencode.Integer(0)),
			bencode.Pair("fault", bencode.String(fault)),
		)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := enc.PushValue(ack); err != nil {
		return err
	}
	return acks.Flush()
}

func (s *Service) observeValue(remote string, d *bencode.Decoder, flattened int) ValueRecord {
	sum := summarize(d)
	rec := ValueRecord{
		Remote:    remote,
		Kind:      sum.kind,
		Flattened: flattened,
		Tokens:    sum.tokens,
		Depth:     sum.depth,
		At:        time.Now(),
	}
	s.statsMu.Lock()
	s.values++
	s.flattened += uint64(flattened)
	s.recent = append(s.recent, rec)
	if over := len(s.recent) - s.cfg.StatusRingSize; over > 0 {
		s.recent = s.recent[over:]
	}
	s.statsMu.Unlock()
	RecordValue(s.cfg.RelayID, sum.kind, flattened)
	return rec
}

func (s *Service) recordFault(kind string) {
	s.statsMu.Lock()
	s.decodeErrors++
	s.statsMu.Unlock()
	RecordDecodeError(s.cfg.RelayID, kind)
}

type valueSummary struct {
	kind   string
	tokens int
	depth  int
}

// summarize walks a completed value's token stream and classifies it.
// The walk moves the shared buffer cursor; the stream reader rewinds it
// before the next value, so no explicit reset is needed here.
func summarize(d *bencode.Decoder) valueSummary {
	var sum valueSummary
	level := 0
	for {
		tok := d.NextToken()
		if tok == bencode.TokenEnd {
			return sum
		}
		if sum.tokens == 0 {
			sum.kind = topKind(tok)
		}
		sum.tokens++
		switch tok {
		case bencode.TokenListOpen, bencode.TokenDictOpen:
			level++
			if level > sum.depth {
				sum.depth = level
			}
		case bencode.TokenPop:
			level--
		}
	}
}

func topKind(tok bencode.Token) string {
	switch tok {
	case bencode.TokenNumber:
		return "integer"
	case bencode.TokenString:
		return "string"
	case bencode.TokenListOpen:
		return "list"
	case bencode.TokenDictOpen:
		return "dict"
	default:
		return "unknown"
	}
}

// faultKind labels a decode error for metrics and acks.
func faultKind(err error) string {
	switch {
	case errors.Is(err, bencode.ErrBufferOverflow):
		return "overflow"
	case errors.Is(err, bencode.ErrStringTooLong):
		return "oversize"
	case errors.Is(err, bencode.ErrUnbalancedNesting):
		return "unbalanced"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "truncated"
	default:
		return "io"
	}
}

func isDecodeFault(err error) bool {
	return errors.Is(err, bencode.ErrBufferOverflow) ||
		errors.Is(err, bencode.ErrStringTooLong) ||
		errors.Is(err, bencode.ErrUnbalancedNesting)
}

func (s *Service) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Service) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

func (s *Service) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}
