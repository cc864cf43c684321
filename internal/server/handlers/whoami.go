package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pitidev/workhub/internal/apierrors"
	"github.com/pitidev/workhub/internal/auth"
	"github.com/pitidev/workhub/internal/storage"
)

// WhoamiHandler returns the account behind the bearer token
type WhoamiHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewWhoamiHandler creates a new whoami handler
func NewWhoamiHandler(store storage.Store, logger *slog.Logger) *WhoamiHandler {
	return &WhoamiHandler{
		store:  store,
		logger: logger,
	}
}

// GetWhoami handles GET /auth/me.
// Must be mounted behind middleware.RequireAuth.
func (h *WhoamiHandler) GetWhoami(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		apierrors.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.store.GetUser(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.logger.Debug("Token subject no longer exists", "user_id", principal.UserID)
			apierrors.WriteUnauthorized(w, "Account no longer exists")
			return
		}
		writeStorageError(w, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, user.Public(), h.logger)
}
