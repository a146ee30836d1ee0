// Package config loads service settings from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables
type Config struct {
	TelegramBotToken string

	CBSAURL string `validate:"required,url"`
	CBPURL  string `validate:"required,url"`

	// CBSAParser names the table walker used on the CBSA page
	CBSAParser string `validate:"oneof=query tree"`

	// Only CBP ports whose number starts with RegionPrefix are kept when RestrictToRegion is set
	RegionPrefix     string `validate:"len=2,numeric"`
	RestrictToRegion bool

	// Prefix assumed for 6-digit port identifiers
	PortIDPrefix string `validate:"len=2,numeric"`

	RefreshSchedule string        `validate:"required"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `validate:"oneof=json console"`
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; it never
// overrides variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	timeout, err := time.ParseDuration(envOrDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	restrict, err := strconv.ParseBool(envOrDefault("CBP_RESTRICT_TO_REGION", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CBP_RESTRICT_TO_REGION: %w", err)
	}

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		CBSAURL:          envOrDefault("CBSA_URL", "https://www.cbsa-asfc.gc.ca/bwt-taf/menu-eng.html"),
		CBPURL:           envOrDefault("CBP_URL", "https://bwt.cbp.gov/api/bwtnew"),
		CBSAParser:       envOrDefault("CBSA_PARSER", "query"),
		RegionPrefix:     envOrDefault("CBP_REGION_PREFIX", "30"),
		RestrictToRegion: restrict,
		PortIDPrefix:     envOrDefault("PORTID_DEFAULT_PREFIX", "02"),
		RefreshSchedule:  envOrDefault("REFRESH_SCHEDULE", "*/15 * * * *"),
		HTTPTimeout:      timeout,
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "console"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
