// Package config provides configuration loading for the PDF tools service.
// Supports YAML files, a .env file, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// Config holds all configuration for the PDF tools service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Retention     RetentionConfig     `yaml:"retention"`
	Compress      CompressConfig      `yaml:"compress"`
	Upload        UploadConfig        `yaml:"upload"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	PublicBaseURL    string        `yaml:"public_base_url"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	RateLimitRPS     float64       `yaml:"rate_limit_rps"`
	RateLimitBurst   int           `yaml:"rate_limit_burst"`
}

// StorageConfig holds artifact storage settings.
type StorageConfig struct {
	Root string `yaml:"root"`
}

// RetentionConfig holds artifact retention settings.
type RetentionConfig struct {
	MaxAge        time.Duration `yaml:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// CompressConfig holds raster compression settings.
type CompressConfig struct {
	DPI          int `yaml:"dpi"`
	MaxDimension int `yaml:"max_dimension"`
	JPEGQuality  int `yaml:"jpeg_quality"`
}

// UploadConfig holds request body limits.
type UploadConfig struct {
	MaxMB int64 `yaml:"max_mb"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// A .env file in the working directory, if present, is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		if cfg.Storage.Root != "" {
			cfg.Storage.Root = ResolveRelativePath(path, cfg.Storage.Root)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      5 * time.Minute,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			AllowedOrigins:   []string{"*"},
			RateLimitRPS:     20,
			RateLimitBurst:   40,
		},
		Storage: StorageConfig{
			Root: "wwwroot",
		},
		Retention: RetentionConfig{
			MaxAge:        30 * time.Minute,
			SweepInterval: 10 * time.Minute,
		},
		Compress: CompressConfig{
			DPI:          150,
			MaxDimension: 1500,
			JPEGQuality:  75,
		},
		Upload: UploadConfig{
			MaxMB: 100,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "pdf-tools",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return domain.ConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Storage.Root == "" {
		return domain.ConfigError("storage root is required", nil)
	}

	if c.Retention.MaxAge <= 0 || c.Retention.SweepInterval <= 0 {
		return domain.ConfigError("retention max_age and sweep_interval must be positive", nil)
	}

	if c.Compress.DPI < 10 || c.Compress.DPI > 1200 {
		return domain.ConfigError(fmt.Sprintf("compress dpi must be between 10 and 1200, got %d", c.Compress.DPI), nil)
	}

	if c.Compress.MaxDimension < 1 {
		return domain.ConfigError("compress max_dimension must be positive", nil)
	}

	if c.Compress.JPEGQuality < 1 || c.Compress.JPEGQuality > 100 {
		return domain.ConfigError(fmt.Sprintf("jpeg quality must be between 1 and 100, got %d", c.Compress.JPEGQuality), nil)
	}

	if c.Upload.MaxMB < 1 {
		return domain.ConfigError("upload max_mb must be positive", nil)
	}

	if c.Server.RateLimitRPS < 0 {
		return domain.ConfigError("rate_limit_rps cannot be negative", nil)
	}

	return nil
}

// RetentionPolicy builds the immutable retention policy from config.
func (c *Config) RetentionPolicy() domain.RetentionPolicy {
	return domain.RetentionPolicy{
		MaxAge:        c.Retention.MaxAge,
		SweepInterval: c.Retention.SweepInterval,
		Categories:    domain.AllCategories(),
	}
}

// MaxUploadBytes returns the request body limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxMB * 1024 * 1024
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError("invalid SERVER_PORT", err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.Server.PublicBaseURL = v
	}

	if v := os.Getenv("STORAGE_ROOT"); v != "" {
		cfg.Storage.Root = v
	}

	if v := os.Getenv("RETENTION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.ConfigError("invalid RETENTION_MAX_AGE", err)
		}
		cfg.Retention.MaxAge = d
	}

	if v := os.Getenv("RETENTION_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.ConfigError("invalid RETENTION_SWEEP_INTERVAL", err)
		}
		cfg.Retention.SweepInterval = d
	}

	if v := os.Getenv("COMPRESS_DPI"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError("invalid COMPRESS_DPI", err)
		}
		cfg.Compress.DPI = n
	}

	if v := os.Getenv("COMPRESS_MAX_DIMENSION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError("invalid COMPRESS_MAX_DIMENSION", err)
		}
		cfg.Compress.MaxDimension = n
	}

	if v := os.Getenv("COMPRESS_JPEG_QUALITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ConfigError("invalid COMPRESS_JPEG_QUALITY", err)
		}
		cfg.Compress.JPEGQuality = n
	}

	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.ConfigError("invalid MAX_UPLOAD_MB", err)
		}
		cfg.Upload.MaxMB = n
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.ConfigError("invalid RATE_LIMIT_RPS", err)
		}
		cfg.Server.RateLimitRPS = f
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	return nil
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}
