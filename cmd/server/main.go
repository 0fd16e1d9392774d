package main

import (
	"context"
	"os"

	"github.com/emirk/academia/internal/bootstrap"
	"github.com/emirk/academia/internal/ops"
	"github.com/emirk/academia/internal/pkg/logger"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize configuration")
		os.Exit(1)
	}

	dataStore, files, err := bootstrap.SetupStore(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize data store")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ops.Start(ctx, cfg.Ops.Addr, dataStore, lgr)

	srv := bootstrap.BuildServer(cfg, dataStore, files, lgr)

	// Run blocks until SIGINT/SIGTERM and performs the final save.
	if err := srv.Run(); err != nil {
		lgr.Error().Err(err).Msg("Server execution failed")
		os.Exit(1)
	}

	lgr.Info().Msg("Application finished gracefully")
}
