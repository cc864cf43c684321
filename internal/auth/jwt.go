package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pitidev/workhub/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

const issuer = "workhub-server"

// Claims represents the JWT claims of both token kinds
type Claims struct {
	Email string    `json:"email"`
	Type  TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 access and refresh tokens
type TokenIssuer struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secretKey string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccessToken creates a short-lived token accepted as bearer credential
func (i *TokenIssuer) IssueAccessToken(u *models.User) (string, error) {
	return i.issue(u, TokenAccess, i.accessTTL)
}

// IssueRefreshToken creates a long-lived token accepted only by the refresh endpoint
func (i *TokenIssuer) IssueRefreshToken(u *models.User) (string, error) {
	return i.issue(u, TokenRefresh, i.refreshTTL)
}

// IssuePair creates an access token and a refresh token for u
func (i *TokenIssuer) IssuePair(u *models.User) (access, refresh string, err error) {
	access, err = i.IssueAccessToken(u)
	if err != nil {
		return "", "", err
	}
	refresh, err = i.IssueRefreshToken(u)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (i *TokenIssuer) issue(u *models.User, typ TokenType, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Email: u.Email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates an access token and returns its claims
func (i *TokenIssuer) ParseAccessToken(tokenString string) (*Claims, error) {
	return i.parse(tokenString, TokenAccess)
}

// ParseRefreshToken validates a refresh token and returns its claims
func (i *TokenIssuer) ParseRefreshToken(tokenString string) (*Claims, error) {
	return i.parse(tokenString, TokenRefresh)
}

func (i *TokenIssuer) parse(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, want, claims.Type)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}
