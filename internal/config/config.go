package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from environment variables and .env file.
func Load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values envconfig cannot check on its own.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if c.Turso.PrimaryURL != "" && c.Turso.AuthToken == "" {
		return fmt.Errorf("TURSO_AUTH_TOKEN is required when TURSO_PRIMARY_URL is set")
	}
	if c.Digest.Hour > 23 || c.Digest.Minute > 59 {
		return fmt.Errorf("digest time %02d:%02d is not a valid time of day", c.Digest.Hour, c.Digest.Minute)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" and empty mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
