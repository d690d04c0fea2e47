// Package config resolves service configuration from the environment
// and an optional tuning file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source names which adaptor backs the API.
type Source string

const (
	SourcePostgres Source = "postgres"
	SourceFake     Source = "fake"
)

// Config is the resolved service configuration.
type Config struct {
	Source      Source
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
	LogLevel    string

	MaxWindow         time.Duration
	DefaultResolution time.Duration
	MaxFillGap        time.Duration
	SmoothWindow      int

	RateLimitRPS   float64
	RateLimitBurst int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// tuningFile mirrors the aggregation knobs in the optional YAML file.
// Durations are strings in time.ParseDuration syntax.
type tuningFile struct {
	MaxWindow         string `yaml:"max_window"`
	DefaultResolution string `yaml:"default_resolution"`
	MaxFillGap        string `yaml:"max_fill_gap"`
	SmoothWindow      int    `yaml:"smooth_window"`
}

// Load resolves configuration from a .env file when present, the
// environment, and finally the YAML tuning file named by QUARTZ_CONFIG,
// which wins for the aggregation knobs.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Source:            Source(getenvDefault("SOURCE", string(SourceFake))),
		DatabaseURL:       getenvDefault("DB_URL", getenvDefault("DATABASE_URL", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8000"),
		JWTSecret:         getenvDefault("JWT_SECRET", ""),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		MaxWindow:         getenvDuration("MAX_WINDOW", 744*time.Hour),
		DefaultResolution: getenvDuration("DEFAULT_RESOLUTION", 15*time.Minute),
		MaxFillGap:        getenvDuration("MAX_FILL_GAP", time.Hour),
		SmoothWindow:      getenvIntDefault("SMOOTH_WINDOW", 4),
		RateLimitRPS:      getenvFloatDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    getenvIntDefault("RATE_LIMIT_BURST", 20),
		ReadTimeout:       getenvDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:      getenvDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if path := os.Getenv("QUARTZ_CONFIG"); path != "" {
		if err := applyTuningFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Source {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DB_URL is required when SOURCE=postgres")
		}
	case SourceFake:
	default:
		return fmt.Errorf("config: unknown SOURCE %q", c.Source)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.MaxWindow <= 0 || c.DefaultResolution <= 0 || c.MaxFillGap <= 0 {
		return errors.New("config: aggregation durations must be positive")
	}
	if c.SmoothWindow <= 0 {
		return errors.New("config: SMOOTH_WINDOW must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("config: rate limit values must be positive")
	}
	return nil
}

func applyTuningFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read tuning file: %w", err)
	}
	var tuning tuningFile
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return fmt.Errorf("config: parse tuning file: %w", err)
	}

	if tuning.MaxWindow != "" {
		if cfg.MaxWindow, err = time.ParseDuration(tuning.MaxWindow); err != nil {
			return fmt.Errorf("config: max_window: %w", err)
		}
	}
	if tuning.DefaultResolution != "" {
		if cfg.DefaultResolution, err = time.ParseDuration(tuning.DefaultResolution); err != nil {
			return fmt.Errorf("config: default_resolution: %w", err)
		}
	}
	if tuning.MaxFillGap != "" {
		if cfg.MaxFillGap, err = time.ParseDuration(tuning.MaxFillGap); err != nil {
			return fmt.Errorf("config: max_fill_gap: %w", err)
		}
	}
	if tuning.SmoothWindow != 0 {
		cfg.SmoothWindow = tuning.SmoothWindow
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
