package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	// URLEnvVar is the environment variable for server URL
	URLEnvVar = "WORKHUB_URL"
)

// ResolveURL resolves the server URL using precedence:
// 1. flagURL (--url flag)
// 2. Environment variable (WORKHUB_URL)
// 3. URL saved in the config file by 'login'
// Returns error if no URL found
func ResolveURL(flagURL string, cfg *Config) (string, error) {
	if flagURL != "" {
		return NormalizeURL(flagURL), nil
	}

	if envURL := os.Getenv(URLEnvVar); envURL != "" {
		return NormalizeURL(envURL), nil
	}

	if cfg != nil && cfg.URL != "" {
		return NormalizeURL(cfg.URL), nil
	}

	return "", fmt.Errorf("no server URL configured. Use --url flag, %s env var, or run 'login' command", URLEnvVar)
}

// NormalizeURL trims whitespace and trailing slashes
func NormalizeURL(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}
