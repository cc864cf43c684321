package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pitidev/workhub/internal/client/credstore"
	"github.com/pitidev/workhub/internal/models"
)

// Login exchanges email and password for a token pair and stores both tokens.
// A 401 from the login endpoint is returned as is, never refreshed.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", models.LoginRequest{Email: email, Password: password})
}

// Register creates an account and stores the returned token pair
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", models.RegisterRequest{Name: name, Email: email, Password: password})
}

// Logout removes both stored tokens. It succeeds when nothing is stored.
func (c *Client) Logout(ctx context.Context) error {
	if err := credstore.Clear(c.store); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.GetJSON(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*models.AuthResponse, error) {
	req, err := NewRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	req = req.withoutAuth()

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out models.AuthResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("server response did not contain a token")
	}

	if err := credstore.Save(c.store, out.Token, out.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}
	return &out, nil
}
