package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pitidev/workhub/internal/models"
	"github.com/pitidev/workhub/internal/storage"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrCodeProjectNotFound     ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeProjectExists       ErrorCode = "PROJECT_ALREADY_EXISTS"
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken          ErrorCode = "EMAIL_TAKEN"
	ErrCodeValidationError     ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	ErrCodeStorageUnavailable  ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code ErrorCode, message string, statusCode int, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// WriteUnauthorized writes a 401 with a bearer challenge
func WriteUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="workhub"`)
	WriteError(w, ErrCodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// WriteValidationError writes a 400 for a models.ValidationError, naming the field
func WriteValidationError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		WriteError(w, ErrCodeValidationError, verr.Message, http.StatusBadRequest,
			map[string]string{"field": verr.Field})
		return
	}
	WriteError(w, ErrCodeValidationError, err.Error(), http.StatusBadRequest, nil)
}

// MapStorageError maps storage errors to HTTP responses
func MapStorageError(err error, resourceType string) (ErrorCode, string, int) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		switch resourceType {
		case "project":
			return ErrCodeProjectNotFound, "Project not found", http.StatusNotFound
		case "user":
			return ErrCodeUserNotFound, "User not found", http.StatusNotFound
		default:
			return ErrCodeProjectNotFound, "Resource not found", http.StatusNotFound
		}

	case errors.Is(err, storage.ErrAlreadyExists):
		switch resourceType {
		case "user":
			return ErrCodeEmailTaken, "Email is already registered", http.StatusConflict
		default:
			return ErrCodeProjectExists, "Project already exists", http.StatusConflict
		}

	case errors.Is(err, storage.ErrStorageUnavailable):
		return ErrCodeStorageUnavailable, "Storage service unavailable", http.StatusServiceUnavailable

	default:
		return ErrCodeInternal, "Internal server error", http.StatusInternalServerError
	}
}
