package relay

import (
	"strings"
	"time"

	"github.com/danmuck/bencwire/bencode"
)

// Config wires one relay instance.
type Config struct {
	// RelayID labels logs, metrics, and the status API.
	RelayID string
	// ListenAddr is the TCP ingest endpoint.
	ListenAddr string
	// AdminListenAddr serves the HTTP admin API; empty disables it.
	AdminListenAddr string
	// DecodeCapacity sizes each connection's decode buffer.
	DecodeCapacity int
	// Compressed expects zlib-wrapped ingest streams. Acks are always
	// written plain.
	Compressed bool
	// ReadTimeout and WriteTimeout bound per-value socket waits.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// CORSOrigins go to the admin API; empty means the local dev origin.
	CORSOrigins []string
	// StatusRingSize caps the recent-value list on the status API.
	StatusRingSize int
}

func DefaultConfig() Config {
	return Config{
		RelayID:        "relay.local",
		ListenAddr:     ":9410",
		DecodeCapacity: bencode.MaxBufferLen,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   10 * time.Second,
		StatusRingSize: 32,
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.RelayID) == "" {
		c.RelayID = def.RelayID
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.DecodeCapacity <= 0 {
		c.DecodeCapacity = def.DecodeCapacity
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.StatusRingSize <= 0 {
		c.StatusRingSize = def.StatusRingSize
	}
	return c
}
