package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// Environment variables that control where configuration is read from.
const (
	ConfigPathEnvVar = "CONFIG_PATH"
	EnvFileEnvVar    = "ENV_FILE"
)

// defaultConfig returns the configuration used when nothing overrides it.
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Port:          "8080",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  30 * time.Second,
			IdleTimeout:   60 * time.Second,
			CORSOrigins:   []string{"*"},
			MaxUploadSize: 10 << 20,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
		Auth: AuthConfig{
			AccessTokenDuration: 20 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             20,
		},
		Recommendations: RecommendationConfig{
			GenreLimit:   10,
			AuthorLimit:  10,
			HistoryLimit: 15,
			TopGenres:    3,
			TopAuthors:   3,
		},
	}
}

// LoadConfig loads configuration with precedence (highest first):
//  1. Environment variables.
//  2. .env file (ENV_FILE, default ".env"); never overrides real env vars.
//  3. YAML config file (CONFIG_PATH, then DefaultConfigPaths).
//  4. Defaults.
func LoadConfig() (*Config, error) {
	envFile := os.Getenv(EnvFileEnvVar)
	if envFile == "" {
		envFile = ".env"
	}
	// Missing .env files are fine; malformed ones are not.
	if err := loadEnvFile(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"app_env":  "app.environment",
	"data_dir": "app.data_dir",

	"log_level":  "logger.level",
	"log_format": "logger.format",

	"server_port":            "server.port",
	"server_read_timeout":    "server.read_timeout",
	"server_write_timeout":   "server.write_timeout",
	"server_idle_timeout":    "server.idle_timeout",
	"cors_origins":           "server.cors_origins",
	"server_max_upload_size": "server.max_upload_size",
	"server_trusted_proxies": "server.trusted_proxies",

	"database_path":           "database.path",
	"database_max_open_conns": "database.max_open_conns",
	"database_max_idle_conns": "database.max_idle_conns",

	"auth_secret_key":            "auth.secret_key",
	"auth_access_token_duration": "auth.access_token_duration",

	"rate_limit_enabled":             "rate_limit.enabled",
	"rate_limit_requests_per_minute": "rate_limit.requests_per_minute",
	"rate_limit_burst":               "rate_limit.burst",

	"recommendations_genre_limit":   "recommendations.genre_limit",
	"recommendations_author_limit":  "recommendations.author_limit",
	"recommendations_history_limit": "recommendations.history_limit",
	"recommendations_top_genres":    "recommendations.top_genres",
	"recommendations_top_authors":   "recommendations.top_authors",
}

// envTransformFunc maps an environment variable to its koanf path.
// SERVER_PORT -> server.port, AUTH_SECRET_KEY -> auth.secret_key.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"server.trusted_proxies",
}

// processSliceFields converts comma-separated string values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// loadEnvFile loads KEY=value lines from a .env file into the process
// environment. Variables that are already set are left alone.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- .env path is operator supplied
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", key, err)
		}
	}

	return scanner.Err()
}
