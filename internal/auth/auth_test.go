package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pitidev/workhub/internal/models"
	"github.com/pitidev/workhub/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testUser = &models.User{ID: "u1", Email: "ada@example.com"}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour)

	access, refresh, err := issuer.IssuePair(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := issuer.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, TokenAccess, claims.Type)

	claims, err = issuer.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, claims.Type)
}

func TestTokenIssuer_TokensAreUnique(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour)

	first, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)
	second, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenIssuer_RejectsWrongKind(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour)
	access, refresh, err := issuer.IssuePair(testUser)
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	access, err := issuer.IssueAccessToken(testUser)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseAccessToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenIssuer_RejectsForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour)
	other := NewTokenIssuer("other-secret", time.Minute, time.Hour)

	foreign, err := other.IssueAccessToken(testUser)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Type: TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "workhub-server",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "different secret", token: foreign},
		{name: "alg none", token: unsigned},
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.ParseAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerAuth_Authenticate(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour)
	access, refresh, err := issuer.IssuePair(testUser)
	require.NoError(t, err)
	authenticator := NewBearerAuth(issuer, testLogger())

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{name: "valid access token", header: "Bearer " + access},
		{name: "lowercase scheme", header: "bearer " + access},
		{name: "missing header", header: "", wantErr: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "bearer without token", header: "Bearer ", wantErr: true},
		{name: "refresh token as bearer", header: "Bearer " + refresh, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/projects", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			principal, err := authenticator.Authenticate(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", principal.UserID)
			assert.Equal(t, "ada@example.com", principal.Email)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, PrincipalFrom(ctx))

	p := &Principal{UserID: "u1"}
	assert.Same(t, p, PrincipalFrom(WithPrincipal(ctx, p)))
}

func writeUsersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestSeedUsersAndVerifyCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	path := writeUsersFile(t, `users:
  - name: Ada
    email: Ada@Example.com
    password: "`+string(hash)+`"
`)
	store := storage.NewMemoryStorage(testLogger())
	ctx := context.Background()

	require.NoError(t, SeedUsers(ctx, store, path, testLogger()))
	// seeding twice keeps a single account
	require.NoError(t, SeedUsers(ctx, store, path, testLogger()))

	user, err := VerifyCredentials(ctx, store, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = VerifyCredentials(ctx, store, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = VerifyCredentials(ctx, store, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoadUsersFile_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "invalid yaml",
			content:     "users: [",
			errContains: "invalid YAML syntax",
		},
		{
			name:        "plaintext password",
			content:     "users:\n  - email: ada@example.com\n    password: hunter2\n",
			errContains: "bcrypt hash",
		},
		{
			name:        "bad email",
			content:     "users:\n  - email: not-an-email\n    password: x\n",
			errContains: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadUsersFile(writeUsersFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))
}
