package credstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service name used when none is given
const DefaultKeyringService = "workhub"

// KeyringStore keeps credentials in the OS credential manager
// (macOS Keychain, Windows Credential Manager, Secret Service on Linux).
// Each key is stored as a separate secret under the same service.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring store for service
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

// Get returns the secret stored under key
func (k *KeyringStore) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s from keychain: %w", key, err)
	}
	return value, nil
}

// Set stores value under key
func (k *KeyringStore) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to save %s to keychain: %w", key, err)
	}
	return nil
}

// Remove deletes key
func (k *KeyringStore) Remove(key string) error {
	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keychain: %w", key, err)
	}
	return nil
}
