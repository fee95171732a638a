// Package config provides configuration management for the job posting processor.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingFileEndpoint  = errors.New("extraction.file_endpoint is required")
	ErrMissingTextEndpoint  = errors.New("extraction.text_endpoint is required")
	ErrInvalidTimeout       = errors.New("timeout_sec must be at least 1")
	ErrInvalidRate          = errors.New("extraction.rate_per_second must be non-negative")
	ErrInvalidMaxFileBytes  = errors.New("upload.max_file_bytes must be at least 1")
	ErrNoAllowedExtensions  = errors.New("upload.allowed_extensions must not be empty")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat     = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidMaxCellWidth  = errors.New("display.max_cell_width must be non-negative")
	ErrMissingServerAddress = errors.New("server.addr is required")
)

// Environment variables that override the file.
const (
	EnvFileEndpoint = "JOBPOSTING_API_FILE"
	EnvTextEndpoint = "JOBPOSTING_API_TEXT"
	EnvDatabaseID   = "NOTION_DATABASE_ID"
	EnvNotionURL    = "NOTION_BASE_URL"
	EnvLogLevel     = "JOBPOSTING_LOG_LEVEL"
	EnvServerAddr   = "JOBPOSTING_ADDR"
)

// DefaultMaxFileBytes is the upload ceiling (5 MiB).
const DefaultMaxFileBytes = 5 * 1024 * 1024

// Config represents the complete configuration.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Publish    PublishConfig    `yaml:"publish"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Upload     UploadConfig     `yaml:"upload"`
	Display    DisplayConfig    `yaml:"display"`
}

// ExtractionConfig points at the remote extraction API.
type ExtractionConfig struct {
	FileEndpoint  string  `yaml:"file_endpoint"`
	TextEndpoint  string  `yaml:"text_endpoint"`
	TimeoutSec    int     `yaml:"timeout_sec"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// PublishConfig points at the destination workspace.
// The credential itself never lives in the file.
type PublishConfig struct {
	BaseURL        string `yaml:"base_url"`
	DatabaseID     string `yaml:"database_id"`
	KeyringAccount string `yaml:"keyring_account"`
	TimeoutSec     int    `yaml:"timeout_sec"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UploadConfig holds the checks applied to uploads before they reach the extractor.
type UploadConfig struct {
	AllowedExtensions []string `yaml:"allowed_extensions"`
	MaxFileBytes      int64    `yaml:"max_file_bytes"`
}

// DisplayConfig tunes terminal rendering.
type DisplayConfig struct {
	MaxCellWidth int `yaml:"max_cell_width"`
}

// Default returns a configuration with every optional field filled in.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			TimeoutSec: 60,
			Burst:      1,
		},
		Publish: PublishConfig{
			BaseURL:        "https://api.notion.com",
			KeyringAccount: "notion",
			TimeoutSec:     30,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Upload: UploadConfig{
			AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png"},
			MaxFileBytes:      DefaultMaxFileBytes,
		},
		Display: DisplayConfig{
			MaxCellWidth: 80,
		},
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return nil
}

// LoadConfig reads the YAML file at path on top of the defaults, applies
// environment overrides and validates. An empty path uses defaults and
// environment only.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ReadConfig is LoadConfig without validation, for commands that only need
// part of the configuration.
func ReadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() error {
	overrides := map[string]*string{
		EnvFileEndpoint: &c.Extraction.FileEndpoint,
		EnvTextEndpoint: &c.Extraction.TextEndpoint,
		EnvDatabaseID:   &c.Publish.DatabaseID,
		EnvNotionURL:    &c.Publish.BaseURL,
		EnvLogLevel:     &c.Logging.Level,
		EnvServerAddr:   &c.Server.Addr,
	}

	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("JOBPOSTING_TIMEOUT_SEC"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JOBPOSTING_TIMEOUT_SEC: %w", err)
		}

		c.Extraction.TimeoutSec = n
	}

	return nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Extraction.FileEndpoint == "" {
		return ErrMissingFileEndpoint
	}

	if c.Extraction.TextEndpoint == "" {
		return ErrMissingTextEndpoint
	}

	if c.Extraction.TimeoutSec < 1 {
		return fmt.Errorf("extraction.%w", ErrInvalidTimeout)
	}

	if c.Extraction.RatePerSecond < 0 {
		return ErrInvalidRate
	}

	if c.Publish.TimeoutSec < 1 {
		return fmt.Errorf("publish.%w", ErrInvalidTimeout)
	}

	if c.Upload.MaxFileBytes < 1 {
		return ErrInvalidMaxFileBytes
	}

	if len(c.Upload.AllowedExtensions) == 0 {
		return ErrNoAllowedExtensions
	}

	if c.Server.Addr == "" {
		return ErrMissingServerAddress
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Display.MaxCellWidth < 0 {
		return ErrInvalidMaxCellWidth
	}

	return nil
}

// ExtractionTimeout returns the per-request timeout for the extraction API.
func (c *Config) ExtractionTimeout() time.Duration {
	return time.Duration(c.Extraction.TimeoutSec) * time.Second
}

// PublishTimeout returns the per-request timeout for the workspace API.
func (c *Config) PublishTimeout() time.Duration {
	return time.Duration(c.Publish.TimeoutSec) * time.Second
}

// IsAllowedExtension reports whether ext (with or without a leading dot) may be uploaded.
func (c *Config) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.Upload.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}

	return false
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{FileEndpoint: %s, TextEndpoint: %s, Database: %s}",
		c.Extraction.FileEndpoint,
		c.Extraction.TextEndpoint,
		c.Publish.DatabaseID,
	)
}
