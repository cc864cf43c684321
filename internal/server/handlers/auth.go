package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pitidev/workhub/internal/apierrors"
	"github.com/pitidev/workhub/internal/auth"
	"github.com/pitidev/workhub/internal/models"
	"github.com/pitidev/workhub/internal/storage"
)

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	store  storage.Store
	issuer *auth.TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, issuer *auth.TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		store:  store,
		issuer: issuer,
		logger: logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = models.NormalizeEmail(req.Email)

	if err := models.ValidateRegistration(&req); err != nil {
		h.logger.Warn("Registration validation failed",
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteValidationError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", "error", err)
		apierrors.WriteError(w, apierrors.ErrCodeInternal, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if !errors.Is(err, storage.ErrAlreadyExists) {
			h.logger.Error("Failed to create user", "error", err)
		}
		writeStorageError(w, err, "user")
		return
	}

	h.writeTokens(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := auth.VerifyCredentials(r.Context(), h.store, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Warn("Login failed: invalid credentials",
				"email", models.NormalizeEmail(req.Email),
				"remote_addr", r.RemoteAddr)
			apierrors.WriteError(w, apierrors.ErrCodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized, nil)
			return
		}
		h.logger.Error("Login failed", "error", err)
		writeStorageError(w, err, "user")
		return
	}

	h.logger.Info("User logged in", "user_id", user.ID)
	h.writeTokens(w, http.StatusOK, user)
}

// RefreshToken handles POST /auth/refresh-token.
// It exchanges a valid refresh token for a new access token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token == "" {
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "token is required", http.StatusBadRequest,
			map[string]string{"field": "token"})
		return
	}

	claims, err := h.issuer.ParseRefreshToken(req.Token)
	if err != nil {
		h.logger.Info("Refresh rejected",
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteError(w, apierrors.ErrCodeInvalidRefreshToken, "Refresh token is invalid or expired", http.StatusUnauthorized, nil)
		return
	}

	user, err := h.store.GetUser(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apierrors.WriteError(w, apierrors.ErrCodeInvalidRefreshToken, "Refresh token is invalid or expired", http.StatusUnauthorized, nil)
			return
		}
		writeStorageError(w, err, "user")
		return
	}

	token, err := h.issuer.IssueAccessToken(user)
	if err != nil {
		h.logger.Error("Failed to issue access token", "error", err)
		apierrors.WriteError(w, apierrors.ErrCodeInternal, "Failed to issue token", http.StatusInternalServerError, nil)
		return
	}

	h.logger.Debug("Access token refreshed", "user_id", user.ID)
	writeJSON(w, http.StatusOK, models.RefreshResponse{Token: token}, h.logger)
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, status int, user *models.User) {
	access, refresh, err := h.issuer.IssuePair(user)
	if err != nil {
		h.logger.Error("Failed to issue tokens", "error", err)
		apierrors.WriteError(w, apierrors.ErrCodeInternal, "Failed to issue token", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, status, models.AuthResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         user.Public(),
	}, h.logger)
}
