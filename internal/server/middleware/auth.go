package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pitidev/workhub/internal/apierrors"
	"github.com/pitidev/workhub/internal/auth"
)

// RequireAuth returns middleware that rejects requests without a valid access
// token and stores the authenticated principal in the request context
func RequireAuth(authenticator auth.Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authenticator.Authenticate(r)
			if err != nil {
				logger.Debug("Request rejected: not authenticated",
					"endpoint", r.URL.Path,
					"error", err)
				apierrors.WriteUnauthorized(w, "Missing, invalid or expired access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
