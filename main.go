package main

import (
	"log"

	"github.com/joho/godotenv"
	"imgocr/cmd"
	"imgocr/internal/config"
	"imgocr/internal/logger"
)

func main() {
	// Load environment variables; a missing .env file is fine since
	// everything can come from the process environment.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		cfg = config.Default()
	}

	// Initialize logger with configuration
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Execute CLI commands
	cmd.Execute(cfg)
}
