package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			Host:      "0.0.0.0",
			RateLimit: 100,
		},
		Storage: StorageConfig{
			URI: "file://./data/workhub.json",
		},
		Auth: AuthConfig{
			JWTSecret:  "0123456789abcdef0123",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		expected string
	}{
		{name: "empty secret", secret: "", expected: ""},
		{name: "non-empty secret", secret: "my-secret-value", expected: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: AuthConfig{JWTSecret: tt.secret}}
			assert.Equal(t, tt.expected, cfg.MaskSecret())
		})
	}
}

func TestValidate_StorageURI(t *testing.T) {
	tests := []struct {
		name      string
		uri       string
		wantError bool
		errMsg    string
	}{
		{name: "valid file URI", uri: "file://./data/workhub.json"},
		{name: "path without scheme (auto-prefixed)", uri: "./data/workhub.json"},
		{name: "memory", uri: "memory://"},
		{name: "sqlite", uri: "sqlite://./data/workhub.db"},
		{name: "postgres", uri: "postgres://workhub@localhost/workhub"},
		{
			name:      "unsupported scheme",
			uri:       "s3://bucket/path",
			wantError: true,
			errMsg:    "unsupported storage scheme",
		},
		{
			name:      "empty URI",
			uri:       "",
			wantError: true,
			errMsg:    "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage.URI = tt.uri

			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, errMsg: "server.port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, errMsg: "server.port"},
		{name: "negative rate limit", mutate: func(c *Config) { c.Server.RateLimit = -1 }, errMsg: "server.rate_limit"},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, errMsg: "WORKHUB_AUTH_JWT_SECRET"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, errMsg: "at least 16"},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTTL = 0 }, errMsg: "auth.access_ttl"},
		{
			name:   "refresh not longer than access",
			mutate: func(c *Config) { c.Auth.RefreshTTL = c.Auth.AccessTTL },
			errMsg: "auth.refresh_ttl",
		},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, errMsg: "logging.level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, errMsg: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file://./data/workhub.json", cfg.Storage.URI)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("WORKHUB_SERVER_PORT", "9090")
	t.Setenv("WORKHUB_AUTH_ACCESS_TTL", "30s")
	t.Setenv("WORKHUB_AUTH_JWT_SECRET", "from-the-environment")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Auth.AccessTTL)
	assert.Equal(t, "from-the-environment", cfg.Auth.JWTSecret)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workhub.yaml")
	content := `server:
  port: 7070
storage:
  uri: sqlite://./data/workhub.db
auth:
  jwt_secret: file-secret-0123456789
  refresh_ttl: 48h
cors:
  allowed_origins:
    - https://app.example.com
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite://./data/workhub.db", cfg.Storage.URI)
	assert.Equal(t, 48*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
