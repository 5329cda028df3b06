package main

import (
	"os"

	"github.com/deniz/alumlink/internal/pkg/logger"
	"github.com/deniz/alumlink/internal/server"
)

func main() {
	// NewServer orchestrates config loading, database setup, dependency
	// wiring and routing
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
	os.Exit(0)
}
