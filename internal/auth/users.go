package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/pitidev/workhub/internal/models"
	"github.com/pitidev/workhub/internal/storage"
)

// ErrInvalidCredentials is returned when an email/password pair does not match
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserConfig represents a user in the users.yaml file
type UserConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"` // bcrypt hash
}

// UsersFile represents the structure of users.yaml
type UsersFile struct {
	Users []UserConfig `yaml:"users"`
}

// LoadUsersFile reads and parses a users file
func LoadUsersFile(path string) (*UsersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var usersFile UsersFile
	if err := yaml.Unmarshal(data, &usersFile); err != nil {
		return nil, fmt.Errorf("failed to parse users file (invalid YAML syntax): %w", err)
	}

	for i, u := range usersFile.Users {
		if err := models.ValidateEmail(models.NormalizeEmail(u.Email)); err != nil {
			return nil, fmt.Errorf("users file entry %d: %w", i+1, err)
		}
		if _, err := bcrypt.Cost([]byte(u.Password)); err != nil {
			return nil, fmt.Errorf("users file entry %d (%s): password must be a bcrypt hash", i+1, u.Email)
		}
	}

	return &usersFile, nil
}

// SeedUsers creates every user of the users file that does not exist yet.
// Existing accounts are left untouched.
func SeedUsers(ctx context.Context, store storage.Store, path string, logger *slog.Logger) error {
	usersFile, err := LoadUsersFile(path)
	if err != nil {
		return err
	}

	created := 0
	for _, u := range usersFile.Users {
		email := models.NormalizeEmail(u.Email)
		if _, err := store.GetUserByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to look up user %s: %w", email, err)
		}

		user := &models.User{
			ID:           uuid.NewString(),
			Name:         u.Name,
			Email:        email,
			PasswordHash: u.Password,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", email, err)
		}
		created++
	}

	logger.Info("Users file loaded",
		"users_file", path,
		"user_count", len(usersFile.Users),
		"created", created)
	return nil
}

// VerifyCredentials returns the user matching email and password
func VerifyCredentials(ctx context.Context, store storage.Store, email, password string) (*models.User, error) {
	user, err := store.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// same bcrypt cost as a known email
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("workhub-dummy-password"), bcrypt.DefaultCost)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
