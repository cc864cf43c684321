package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"github.com/pitidev/workhub/internal/client"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0 // Success
	ExitGeneralError     = 1 // General error (network failure, server 500, unknown error)
	ExitInvalidArguments = 2 // Invalid arguments/usage (missing required flags, invalid format)
	ExitNotFound         = 3 // Resource not found (404)
	ExitConflict         = 4 // Conflict (409) - e.g., resource already exists
	ExitAuthError        = 5 // Authentication error (401, refresh failure)
	ExitPermissionDenied = 6 // Permission denied (403)
)

const loginHint = "run 'workhub login' to sign in again"

// ExitWithError prints error message and exits with appropriate code
func ExitWithError(err error, message string) {
	if message != "" {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitGeneralError)
}

// ExitWithCode prints error message and exits with specific code
func ExitWithCode(code int, message string) {
	if message != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
	os.Exit(code)
}

// HandleClientError prints a client error and exits with the code matching its kind
func HandleClientError(err error, action string) {
	ExitWithCode(ExitCodeFor(err), Describe(err, action))
}

// ExitCodeFor maps an error returned by the API client to an exit code
func ExitCodeFor(err error) int {
	// A RefreshError may wrap the refresh endpoint's 401, so it is checked first
	if stderrors.Is(err, client.ErrRefreshFailed) || stderrors.Is(err, client.ErrUnauthorized) {
		return ExitAuthError
	}
	if status := client.StatusCode(err); status != 0 {
		return MapHTTPStatusToExitCode(status)
	}
	return ExitGeneralError
}

// Describe renders a one-line message for err, prefixed with action
func Describe(err error, action string) string {
	var (
		netErr  *client.NetworkError
		httpErr *client.HTTPError
		msg     string
	)

	switch {
	case stderrors.Is(err, client.ErrRefreshFailed):
		msg = "session expired and could not be renewed; " + loginHint
	case stderrors.Is(err, client.ErrUnauthorized):
		msg = "not authenticated; " + loginHint
	case stderrors.As(err, &netErr):
		msg = fmt.Sprintf("failed to connect to server: %v", netErr.Err)
	case stderrors.As(err, &httpErr):
		msg = httpErr.Message()
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", httpErr.StatusCode)
		}
	default:
		msg = err.Error()
	}

	if action == "" {
		return msg
	}
	return action + ": " + msg
}

// MapHTTPStatusToExitCode maps HTTP status codes to exit codes
func MapHTTPStatusToExitCode(statusCode int) int {
	switch statusCode {
	case http.StatusUnauthorized:
		return ExitAuthError
	case http.StatusForbidden:
		return ExitPermissionDenied
	case http.StatusNotFound:
		return ExitNotFound
	case http.StatusConflict:
		return ExitConflict
	case http.StatusBadRequest:
		return ExitInvalidArguments
	default:
		if statusCode >= 400 && statusCode < 500 {
			return ExitInvalidArguments
		}
		return ExitGeneralError
	}
}
