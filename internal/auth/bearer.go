package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// BearerAuth authenticates requests carrying an access token in the
// Authorization header
type BearerAuth struct {
	issuer *TokenIssuer
	logger *slog.Logger
}

// NewBearerAuth creates a bearer token authenticator
func NewBearerAuth(issuer *TokenIssuer, logger *slog.Logger) *BearerAuth {
	return &BearerAuth{
		issuer: issuer,
		logger: logger,
	}
}

// Authenticate validates the bearer access token
func (a *BearerAuth) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrInvalidToken)
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}

	claims, err := a.issuer.ParseAccessToken(strings.TrimSpace(token))
	if err != nil {
		a.logger.Debug("Authentication failed",
			"source_ip", r.RemoteAddr,
			"error", err)
		return nil, err
	}

	return &Principal{UserID: claims.Subject, Email: claims.Email}, nil
}
