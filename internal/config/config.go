package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"dev"`
	Port              string        `envconfig:"PORT" default:"8080"`
	DBPath            string        `envconfig:"DB_PATH" default:"./dev.db"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string        `envconfig:"LOG_FORMAT" default:"json"`
	AutoMigrate       bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	PDFFontPath       string        `envconfig:"PDF_FONT_PATH"`
	MaxUploadFiles    int           `envconfig:"MAX_UPLOAD_FILES" default:"3"`
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT must not be empty")
	}
	if cfg.MaxUploadFiles < 1 || cfg.MaxUploadFiles > 3 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_FILES must be between 1 and 3, got %d", cfg.MaxUploadFiles)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
