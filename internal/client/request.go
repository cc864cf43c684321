package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request describes one logical API call. It is never mutated after
// construction: the With* methods return modified copies, so a request can be
// replayed safely after a credential refresh.
type Request struct {
	Method string
	Path   string // relative to the client's base URL, or an absolute URL
	Header http.Header
	Body   []byte

	retried  bool
	skipAuth bool
}

// NewRequest builds a request. A non-nil body is encoded as JSON.
func NewRequest(method, path string, body interface{}) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
	req.Header.Set("Accept", "application/json")

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Body = data
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Retried reports whether this request is already a replay after a refresh
func (r *Request) Retried() bool {
	return r.retried
}

// WithRetried returns a copy marked as replayed. The flag is sticky: copies
// derived from the result stay marked.
func (r *Request) WithRetried() *Request {
	c := r.clone()
	c.retried = true
	return c
}

// WithHeader returns a copy with header key set to value
func (r *Request) WithHeader(key, value string) *Request {
	c := r.clone()
	c.Header.Set(key, value)
	return c
}

// withoutAuth returns a copy that bypasses credential attachment and refresh
func (r *Request) withoutAuth() *Request {
	c := r.clone()
	c.skipAuth = true
	return c
}

func (r *Request) clone() *Request {
	c := *r
	if r.Header != nil {
		c.Header = r.Header.Clone()
	} else {
		c.Header = make(http.Header)
	}
	return &c
}

// url resolves the request path against baseURL
func (r *Request) url(baseURL string) string {
	if strings.HasPrefix(r.Path, "http://") || strings.HasPrefix(r.Path, "https://") {
		return r.Path
	}
	if r.Path == "" {
		return baseURL
	}
	if !strings.HasPrefix(r.Path, "/") {
		return baseURL + "/" + r.Path
	}
	return baseURL + r.Path
}

// build creates a fresh *http.Request. The body reader is new on every call.
func (r *Request) build(ctx context.Context, baseURL string) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, r.url(baseURL), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range r.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	return httpReq, nil
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
