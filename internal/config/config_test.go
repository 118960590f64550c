package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns the defaults with paths filled in.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.App.DataDir = "/data"
	cfg.Database.Path = "/data/catalog.db"
	return cfg
}

// isolateEnv points config discovery at an empty temp dir so the developer's
// own config.yaml or .env cannot leak into the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for key := range envMappings {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv(EnvFileEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv("DATA_DIR", dir)
	return dir
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %q", level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }},
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }},
		{"zero rate when enabled", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"zero history limit", func(c *Config) { c.Recommendations.HistoryLimit = 0 }},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RateLimitDisabledIgnoresRates(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RequestsPerMinute = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := isolateEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, filepath.Join(dir, "catalog.db"), cfg.Database.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 10, cfg.Recommendations.GenreLimit)
	assert.Equal(t, 10, cfg.Recommendations.AuthorLimit)
	assert.Equal(t, 15, cfg.Recommendations.HistoryLimit)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_DURATION", "45m")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_MINUTE", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 45*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.1.2.3/8", "192.0.2.1", "::ffff:198.51.100.7", "2001:db8::/32"})
	require.NoError(t, err)

	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
		netip.MustParsePrefix("198.51.100.7/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, prefixes)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestLoadConfig_YAMLFileBelowEnv(t *testing.T) {
	dir := isolateEnv(t)

	yamlPath := filepath.Join(dir, "catalog.yaml")
	content := `
logger:
  level: debug
server:
  port: "7070"
recommendations:
  history_limit: 30
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o600))
	t.Setenv(ConfigPathEnvVar, yamlPath)
	t.Setenv("SERVER_PORT", "6060")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 30, cfg.Recommendations.HistoryLimit)
	assert.Equal(t, "6060", cfg.Server.Port, "env vars take precedence over the file")
}

func TestLoadConfig_InvalidValueFails(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_ENV", "qa")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "server.port", envTransformFunc("SERVER_PORT"))
	assert.Equal(t, "auth.secret_key", envTransformFunc("AUTH_SECRET_KEY"))
	assert.Equal(t, "", envTransformFunc("PATH"))
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs/./path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = expandPath("~/catalog", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "catalog"), got)
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Test env file
CATALOG_TEST_LEVEL=debug
# Comment line
CATALOG_TEST_QUOTED="some value"
CATALOG_TEST_SINGLE='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, k := range []string{"CATALOG_TEST_LEVEL", "CATALOG_TEST_QUOTED", "CATALOG_TEST_SINGLE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "debug", os.Getenv("CATALOG_TEST_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("CATALOG_TEST_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("CATALOG_TEST_SINGLE"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALID=1\nINVALID LINE\n"), 0o600))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("CATALOG_TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CATALOG_TEST_VAR=new-value"), 0o600))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("CATALOG_TEST_VAR"))
}
