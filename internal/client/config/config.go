package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable read by the CLI
	EnvPrefix = "WORKHUB"

	configDir  = ".config/workhub"
	configFile = "config.yaml"
)

// Config holds the CLI settings
type Config struct {
	URL         string        `mapstructure:"url"`
	Credentials string        `mapstructure:"credentials"` // credential store URI, empty selects the default file
	Timeout     time.Duration `mapstructure:"timeout"`
	Refresh     RefreshConfig `mapstructure:"refresh"`
}

// RefreshConfig controls token refresh behaviour
type RefreshConfig struct {
	SingleFlight bool `mapstructure:"single_flight"`
}

// DefaultPath returns ~/.config/workhub/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// NewViper creates a viper instance with CLI defaults and WORKHUB_ env binding
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("url", "")
	v.SetDefault("credentials", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("refresh.single_flight", true)

	// WORKHUB_REFRESH_SINGLE_FLIGHT -> refresh.single_flight
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file at path on top of defaults and environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	return &cfg, nil
}

// SaveURL records the server URL in the config file at path, keeping every
// other key already present
func SaveURL(path, serverURL string) error {
	values := map[string]interface{}{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		if values == nil {
			values = map[string]interface{}{}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values["url"] = NormalizeURL(serverURL)

	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
