package relay

import (
	"testing"
	"time"

	"github.com/danmuck/bencwire/bencode"
)

func TestWithDefaultsFillsUnsetFields(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.RelayID != "relay.local" {
		t.Fatalf("unexpected relay id: %q", cfg.RelayID)
	}
	if cfg.ListenAddr != ":9410" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr)
	}
	if cfg.DecodeCapacity != bencode.MaxBufferLen {
		t.Fatalf("unexpected decode capacity: %d", cfg.DecodeCapacity)
	}
	if cfg.ReadTimeout != 30*time.Second || cfg.WriteTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts: %v %v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.StatusRingSize != 32 {
		t.Fatalf("unexpected ring size: %d", cfg.StatusRingSize)
	}
}

func TestWithDefaultsKeepsExplicitFields(t *testing.T) {
	cfg := Config{
		RelayID:        "relay.edge-3",
		ListenAddr:     "127.0.0.1:4000",
		DecodeCapacity: 96,
		Compressed:     true,
		ReadTimeout:    5 * time.Second,
		StatusRingSize: 8,
	}.WithDefaults()
	if cfg.RelayID != "relay.edge-3" || cfg.ListenAddr != "127.0.0.1:4000" {
		t.Fatalf("explicit identity overridden: %+v", cfg)
	}
	if cfg.DecodeCapacity != 96 || !cfg.Compressed {
		t.Fatalf("explicit decode settings overridden: %+v", cfg)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("explicit read timeout overridden: %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Fatalf("unset write timeout not defaulted: %v", cfg.WriteTimeout)
	}
	if cfg.StatusRingSize != 8 {
		t.Fatalf("explicit ring size overridden: %d", cfg.StatusRingSize)
	}
}
