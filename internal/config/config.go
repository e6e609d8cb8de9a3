package config

import (
	"fmt"
	"os"

	"imgocr/internal/logger"
)

// Engine names accepted in OCR_ENGINE.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
	EngineVision    = "vision"
	EngineMock      = "mock"
)

type Config struct {
	// Recognition Engine Configuration
	Engine       string // which engine implementation to use
	TesseractCmd string // explicit path to the tesseract binary (TESSERACT_CMD)

	// Recognition Defaults
	DefaultLanguage string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		Engine:          getEnv("OCR_ENGINE", EngineTesseract),
		TesseractCmd:    getEnv("TESSERACT_CMD", ""),
		DefaultLanguage: getEnv("OCR_DEFAULT_LANG", "eng"),
		LogLevel:        getEnv("LOG_LEVEL", "warn"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:       getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns a configuration with all defaults, used as a fallback
// when Load fails.
func Default() *Config {
	return &Config{
		Engine:          EngineTesseract,
		DefaultLanguage: "eng",
		LogLevel:        "warn",
		LogFormat:       "console",
		LogTimeFormat:   "2006-01-02T15:04:05Z07:00",
		LogOutput:       "stderr",
	}
}

func (c *Config) validate() error {
	switch c.Engine {
	case EngineTesseract, EngineGosseract, EngineVision, EngineMock:
	default:
		return fmt.Errorf("OCR_ENGINE must be one of tesseract, gosseract, vision, mock; got %q", c.Engine)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
