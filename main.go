package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/docvault/expiry-scanner/cmd"
	"github.com/docvault/expiry-scanner/config"
	"github.com/docvault/expiry-scanner/logger"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute(cfg)
}
