package main

import (
	"os"

	"github.com/taskgrade/backend/internal/pkg/logger"
	"github.com/taskgrade/backend/internal/server"
)

// @title TaskGrade API
// @version 1.0
// @description API for tracking academic tasks, student submissions and marks

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Error details are logged within the bootstrap functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
