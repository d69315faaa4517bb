package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/bencwire/internal/logging"
	"github.com/danmuck/bencwire/internal/relay"
)

func main() {
	logging.ConfigureRuntime()

	cfg := relay.DefaultConfig()
	if len(os.Args) > 1 {
		path := os.Args[1]
		loaded, err := loadRelayConfig(path)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load relay config")
		}
		cfg = loaded
		log.Info().Str("path", path).Msg("loaded relay config")
	}

	svc := relay.NewService(cfg)
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bencrelay: %v\n", err)
		os.Exit(1)
	}
}
