package auth

import (
	"fmt"
	"os"

	"github.com/pitidev/workhub/internal/client/credstore"
)

const (
	// TokenEnvVar is the environment variable for an access token override
	TokenEnvVar = "WORKHUB_TOKEN"
)

// ResolveToken returns the access token override using precedence:
// 1. flagToken (--token flag)
// 2. Environment variable (WORKHUB_TOKEN)
// Returns empty string if neither is set
func ResolveToken(flagToken string) string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv(TokenEnvVar)
}

// ResolveStore picks the credential store for a command. An explicit token
// yields an in-memory store holding only that access token, so nothing is
// persisted and no refresh is possible. Otherwise the persistent store
// named by storeURI is opened.
func ResolveStore(flagToken, storeURI string) (credstore.Store, error) {
	if token := ResolveToken(flagToken); token != "" {
		return credstore.NewMemoryStore(map[string]string{credstore.KeyToken: token}), nil
	}
	return OpenStore(storeURI)
}

// OpenStore opens the persistent credential store, ignoring any token override
func OpenStore(storeURI string) (credstore.Store, error) {
	store, err := credstore.Open(storeURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return store, nil
}
