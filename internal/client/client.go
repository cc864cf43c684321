package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pitidev/workhub/internal/client/credstore"
)

// RefreshPath is the endpoint that exchanges a refresh token for a new access token
const RefreshPath = "/auth/refresh-token"

// LoginRedirector is told to send the user to the login entry point after a
// refresh failure has cleared the stored credentials.
type LoginRedirector interface {
	RedirectToLogin(cause error)
}

// RedirectFunc adapts a function to LoginRedirector
type RedirectFunc func(cause error)

// RedirectToLogin calls f(cause)
func (f RedirectFunc) RedirectToLogin(cause error) {
	f(cause)
}

// Client issues API requests with bearer credentials taken from a credential
// store. A 401 response triggers one refresh of the access token followed by
// one replay of the original request.
type Client struct {
	baseURL    string
	store      credstore.Store
	httpClient *http.Client
	redirector LoginRedirector
	logger     *slog.Logger
	userAgent  string

	singleFlight bool
	refreshGroup singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the transport used for all requests, including refresh calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default transport
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets the logger used for refresh diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoginRedirector sets the hook signalled when a refresh fails
func WithLoginRedirector(r LoginRedirector) Option {
	return func(c *Client) {
		c.redirector = r
	}
}

// WithSingleFlightRefresh makes concurrent requests that hit 401 with the same
// refresh token share one refresh call instead of each issuing their own.
func WithSingleFlightRefresh(enabled bool) Option {
	return func(c *Client) {
		c.singleFlight = enabled
	}
}

// WithUserAgent sets the User-Agent header on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API at baseURL, reading and writing tokens in store
func New(baseURL string, store credstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.redirector == nil {
		c.redirector = RedirectFunc(func(error) {})
	}
	return c
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the credential store
func (c *Client) Store() credstore.Store {
	return c.store
}

// Do sends req and returns the response for 2xx statuses.
//
// Errors are *NetworkError (no response), *HTTPError (non-2xx) or
// *RefreshError (the 401 could not be recovered because the refresh call failed).
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.skipAuth {
		if req.Retried() {
			c.logger.Debug("Request rejected after refresh, giving up",
				"method", req.Method,
				"path", req.Path)
			return nil, c.httpError(req, resp)
		}
		return c.refreshAndReplay(ctx, req.WithRetried(), resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.httpError(req, resp)
	}
	return resp, nil
}

// send attaches credentials and performs one round trip
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.build(ctx, c.baseURL)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if !req.skipAuth {
		c.attach(httpReq)
	}

	c.logger.Debug("Sending request",
		"method", httpReq.Method,
		"url", httpReq.URL.String(),
		"retried", req.Retried())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: httpReq.Method, URL: httpReq.URL.String(), Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{
			Method: httpReq.Method,
			URL:    httpReq.URL.String(),
			Err:    fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

// attach sets the bearer header when an access token is stored.
// Without a token the headers are left as they are.
func (c *Client) attach(httpReq *http.Request) {
	token, err := credstore.Lookup(c.store, credstore.KeyToken)
	if err != nil {
		c.logger.Warn("Failed to read access token", "error", err)
		return
	}
	if token == "" {
		return
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
}

func (c *Client) httpError(req *Request, resp *Response) *HTTPError {
	return &HTTPError{
		Method:     req.Method,
		URL:        req.url(c.baseURL),
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
}

// Get executes a GET request
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.doJSON(ctx, http.MethodGet, path, nil)
}

// Post executes a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// Put executes a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.doJSON(ctx, http.MethodPut, path, body)
}

// Patch executes a PATCH request with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.doJSON(ctx, http.MethodPatch, path, body)
}

// Delete executes a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doJSON(ctx, http.MethodDelete, path, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	req, err := NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// GetJSON executes a GET request and decodes the response into out
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// PostJSON executes a POST request and decodes the response into out (if non-nil)
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// PutJSON executes a PUT request and decodes the response into out (if non-nil)
func (c *Client) PutJSON(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.Put(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
