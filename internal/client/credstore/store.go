package credstore

import (
	"errors"
	"fmt"
)

// Fixed keys under which the credential pair is persisted.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
)

// ErrNotFound is returned by Get when no value is stored under the key
var ErrNotFound = errors.New("credential not found")

// Store is a persistent key-value holder for the access and refresh tokens.
// Implementations do not validate values and do not track expiry.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// Lookup returns the value stored under key, or "" if it is absent.
// Errors other than ErrNotFound are returned unchanged.
func Lookup(s Store, key string) (string, error) {
	value, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Save stores both tokens, as done after a successful login
func Save(s Store, token, refreshToken string) error {
	if err := s.Set(KeyToken, token); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if refreshToken == "" {
		return s.Remove(KeyRefreshToken)
	}
	if err := s.Set(KeyRefreshToken, refreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Clear removes both tokens. Both removals are attempted even if the first fails.
func Clear(s Store) error {
	return errors.Join(s.Remove(KeyToken), s.Remove(KeyRefreshToken))
}
