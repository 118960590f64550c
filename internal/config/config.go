// Package config provides application configuration layered from defaults,
// an optional YAML file, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration. It is built once at startup
// and passed to constructors; nothing mutates it afterwards.
type Config struct {
	App             AppConfig            `koanf:"app"`
	Logger          LoggerConfig         `koanf:"logger"`
	Server          ServerConfig         `koanf:"server"`
	Database        DatabaseConfig       `koanf:"database"`
	Auth            AuthConfig           `koanf:"auth"`
	RateLimit       RateLimitConfig      `koanf:"rate_limit"`
	Recommendations RecommendationConfig `koanf:"recommendations"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `koanf:"environment"`
	// DataDir holds the database and the generated auth key (default: ~/BookCatalog).
	DataDir string `koanf:"data_dir"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or pretty; empty picks by environment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	CORSOrigins  []string      `koanf:"cors_origins"`
	// MaxUploadSize bounds the import request body in bytes.
	MaxUploadSize int64 `koanf:"max_upload_size"`
	// TrustedProxies lists addresses or CIDRs of reverse proxies allowed to
	// set X-Forwarded-For. Empty means the TCP peer is always the client.
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	// Path to the database file (default: {data_dir}/catalog.db).
	Path         string `koanf:"path"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// SecretKey is the hex-encoded 32-byte PASETO key. When empty the key is
	// loaded from, or generated into, {data_dir}/auth.key.
	SecretKey           string        `koanf:"secret_key"`
	AccessTokenDuration time.Duration `koanf:"access_token_duration"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled           bool `koanf:"enabled"`
	RequestsPerMinute int  `koanf:"requests_per_minute"`
	Burst             int  `koanf:"burst"`
}

// RecommendationConfig holds recommendation result sizes.
type RecommendationConfig struct {
	GenreLimit   int `koanf:"genre_limit"`
	AuthorLimit  int `koanf:"author_limit"`
	HistoryLimit int `koanf:"history_limit"`
	TopGenres    int `koanf:"top_genres"`
	TopAuthors   int `koanf:"top_authors"`
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if c.App.Environment == "" {
		return errors.New("app environment is required")
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "" && c.Logger.Format != "json" && c.Logger.Format != "pretty" {
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	if _, err := ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return err
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return fmt.Errorf("access token duration must be positive, got %s", c.Auth.AccessTokenDuration)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit requests_per_minute and burst must be positive when enabled")
	}

	r := c.Recommendations
	if r.GenreLimit <= 0 || r.AuthorLimit <= 0 || r.HistoryLimit <= 0 || r.TopGenres <= 0 || r.TopAuthors <= 0 {
		return errors.New("recommendation limits must be positive")
	}

	return nil
}

// ParseTrustedProxies parses proxy entries given as single addresses
// ("10.0.0.1") or CIDRs ("10.0.0.0/8").
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the data directory and derives the database path from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir, err := expandPath(c.App.DataDir, filepath.Join(homeDir, "BookCatalog"))
	if err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}
	c.App.DataDir = dataDir

	dbPath, err := expandPath(c.Database.Path, filepath.Join(dataDir, "catalog.db"))
	if err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	c.Database.Path = dbPath

	return nil
}
