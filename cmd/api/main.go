package main

import (
	"os"

	"github.com/ethanbaker/ytchat/internal/api"
	"github.com/ethanbaker/ytchat/pkg/logger"
	"github.com/ethanbaker/ytchat/pkg/utils"
)

// Start the API server
func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)
	log := logger.New(cfg)

	// Start; a startup failure (e.g. port in use) exits non-zero
	if err := api.Start(cfg, log); err != nil {
		log.WithError(err).Fatal("server failed to start")
	}
}
