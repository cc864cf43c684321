package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pitidev/workhub/internal/apierrors"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apierrors.WriteError(w, apierrors.ErrCodeValidationError, "Invalid JSON in request body", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeStorageError(w http.ResponseWriter, err error, resourceType string) {
	code, msg, status := apierrors.MapStorageError(err, resourceType)
	apierrors.WriteError(w, code, msg, status, nil)
}
