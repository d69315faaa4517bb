package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/bencwire/internal/relay"
)

// bencrelay config.toml key mapping to relay runtime settings.
type fileConfig struct {
	ID              string   `toml:"id"`
	ListenAddr      string   `toml:"listen_addr"`
	AdminListenAddr string   `toml:"admin_listen_addr"`
	DecodeCapacity  int      `toml:"decode_capacity"`
	Compressed      bool     `toml:"compressed"`
	ReadTimeout     string   `toml:"read_timeout"`
	WriteTimeout    string   `toml:"write_timeout"`
	CORSOrigins     []string `toml:"cors_origins"`
	StatusRingSize  int      `toml:"status_ring_size"`
}

// loadRelayConfig overlays config.toml onto the relay defaults.
func loadRelayConfig(path string) (relay.Config, error) {
	cfg := relay.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return relay.Config{}, fmt.Errorf("load relay config: %w", err)
	}

	if meta.IsDefined("id") {
		if id := strings.TrimSpace(raw.ID); id != "" {
			cfg.RelayID = id
		}
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}
	if meta.IsDefined("decode_capacity") {
		cfg.DecodeCapacity = raw.DecodeCapacity
	}
	if meta.IsDefined("compressed") {
		cfg.Compressed = raw.Compressed
	}
	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return relay.Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return relay.Config{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.WriteTimeout = d
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = normalizeOrigins(raw.CORSOrigins)
	}
	if meta.IsDefined("status_ring_size") {
		cfg.StatusRingSize = raw.StatusRingSize
	}

	return cfg.WithDefaults(), nil
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
