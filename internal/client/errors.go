package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *HTTPError carrying a 401 status
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefreshFailed matches any *RefreshError
	ErrRefreshFailed = errors.New("credential refresh failed")
)

// NetworkError is returned when the transport produced no response.
// It never triggers a credential refresh.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is returned for any non-2xx response
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s %s: server returned status %d: %s", e.Method, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: server returned status %d", e.Method, e.URL, e.StatusCode)
}

// Is reports a 401 HTTPError as ErrUnauthorized
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Message extracts the server's error message from the standard
// {"error":{"code":...,"message":...}} envelope, falling back to the raw body.
func (e *HTTPError) Message() string {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(e.Body, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if len(e.Body) > 256 {
		return string(e.Body[:256])
	}
	return string(e.Body)
}

// Code returns the machine readable error code from the envelope, if any
func (e *HTTPError) Code() string {
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(e.Body, &envelope) != nil {
		return ""
	}
	return envelope.Error.Code
}

// RefreshError is returned in place of the original 401 when exchanging the
// refresh token failed. Stored credentials have been cleared by the time the
// caller sees it.
type RefreshError struct {
	Err error

	// RedirectToLogin asks the caller to send the user back to the login entry point
	RedirectToLogin bool
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%v: %v", ErrRefreshFailed, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

func (e *RefreshError) Is(target error) bool {
	return target == ErrRefreshFailed
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an *HTTPError
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
