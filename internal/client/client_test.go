package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitidev/workhub/internal/client/credstore"
)

// fakeAPI serves /projects (accepting a single access token) and the refresh endpoint
type fakeAPI struct {
	mu sync.Mutex

	acceptToken   string // access token accepted on /projects; "" rejects everything
	refreshToken  string // refresh token accepted by the refresh endpoint
	issueToken    string // access token handed out on refresh
	refreshStatus int    // forced refresh status; 0 means normal behaviour
	refreshBody   string // raw refresh response body override
	refreshDelay  time.Duration

	// firstSend, when set, holds every request carrying staleToken until all have arrived
	firstSend  *sync.WaitGroup
	staleToken string

	refreshCalls  int
	refreshAuth   []string
	refreshBodies []string
	projectAuth   []string
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func unauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
		"error": map[string]string{"code": "UNAUTHORIZED", "message": message},
	})
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var body refreshRequest
		json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		f.refreshCalls++
		f.refreshAuth = append(f.refreshAuth, r.Header.Get("Authorization"))
		f.refreshBodies = append(f.refreshBodies, body.Token)
		status, raw, delay := f.refreshStatus, f.refreshBody, f.refreshDelay
		expected, issue := f.refreshToken, f.issueToken
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if status != 0 && status != http.StatusOK {
			unauthorized(w, "invalid refresh token")
			return
		}
		if body.Token != expected {
			unauthorized(w, "invalid refresh token")
			return
		}
		if raw != "" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(raw))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": issue})
	})

	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")

		f.mu.Lock()
		f.projectAuth = append(f.projectAuth, auth)
		accept, gate, stale := f.acceptToken, f.firstSend, f.staleToken
		f.mu.Unlock()

		if gate != nil && auth == "Bearer "+stale {
			gate.Done()
			gate.Wait()
		}

		if accept == "" || auth != "Bearer "+accept {
			unauthorized(w, "token expired")
			return
		}
		writeJSON(w, http.StatusOK, []map[string]string{{"id": "p1", "name": "Apollo", "seen": auth}})
	})

	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]string{"code": "PROJECT_NOT_FOUND", "message": "Project not found"},
		})
	})

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			unauthorized(w, "invalid credentials")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":        "A",
			"refreshToken": "R",
			"user":         map[string]string{"id": "u1", "email": body["email"]},
		})
	})

	return mux
}

func (f *fakeAPI) snapshot() (refreshCalls int, projectAuth []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, append([]string(nil), f.projectAuth...)
}

func newTestClient(t *testing.T, api *fakeAPI, store credstore.Store, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)
	return New(server.URL, store, opts...)
}

type redirectRecorder struct {
	mu     sync.Mutex
	causes []error
}

func (r *redirectRecorder) RedirectToLogin(cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.causes = append(r.causes, cause)
}

func (r *redirectRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.causes)
}

func storedValue(t *testing.T, store credstore.Store, key string) string {
	t.Helper()
	value, err := credstore.Lookup(store, key)
	require.NoError(t, err)
	return value
}

func TestClient_AttachesBearerToken(t *testing.T) {
	api := &fakeAPI{acceptToken: "A"}
	store := credstore.NewMemoryStore(map[string]string{credstore.KeyToken: "A"})
	c := newTestClient(t, api, store)

	_, err := c.Get(context.Background(), "/projects")
	require.NoError(t, err)

	_, seen := api.snapshot()
	require.Len(t, seen, 1)
	assert.Equal(t, "Bearer A", seen[0])
}

func TestClient_NoTokenLeavesHeadersUnmodified(t *testing.T) {
	var seen http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]string{})
	}))
	defer server.Close()

	c := New(server.URL, credstore.NewMemoryStore(nil))
	_, err := c.Get(context.Background(), "/public")
	require.NoError(t, err)

	_, present := seen["Authorization"]
	assert.False(t, present, "Authorization header should not be added without a stored token")
}

func TestClient_RefreshesAndReplaysOnce(t *testing.T) {
	api := &fakeAPI{acceptToken: "B", refreshToken: "R", issueToken: "B"}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	redirects := &redirectRecorder{}
	c := newTestClient(t, api, store, WithLoginRedirector(redirects))

	resp, err := c.Get(context.Background(), "/projects")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var projects []map[string]string
	require.NoError(t, resp.Decode(&projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Bearer B", projects[0]["seen"], "caller must observe the retried response")

	refreshCalls, seen := api.snapshot()
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, []string{"Bearer A", "Bearer B"}, seen)

	assert.Equal(t, "B", storedValue(t, store, credstore.KeyToken))
	assert.Equal(t, "R", storedValue(t, store, credstore.KeyRefreshToken))
	assert.Zero(t, redirects.count())

	// the refresh call carries the refresh token and no bearer credential
	assert.Equal(t, []string{"R"}, api.refreshBodies)
	assert.Equal(t, []string{""}, api.refreshAuth)
}

func TestClient_SecondUnauthorizedIsFinal(t *testing.T) {
	api := &fakeAPI{acceptToken: "", refreshToken: "R", issueToken: "B"}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	c := newTestClient(t, api, store)

	_, err := c.Get(context.Background(), "/projects")
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrRefreshFailed)

	refreshCalls, seen := api.snapshot()
	assert.Equal(t, 1, refreshCalls, "no second refresh after the replay is rejected")
	assert.Equal(t, []string{"Bearer A", "Bearer B"}, seen)
}

func TestClient_RefreshFailureClearsCredentialsAndRedirects(t *testing.T) {
	api := &fakeAPI{acceptToken: "B", refreshToken: "R", refreshStatus: http.StatusUnauthorized}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	redirects := &redirectRecorder{}
	c := newTestClient(t, api, store, WithLoginRedirector(redirects))

	_, err := c.Get(context.Background(), "/projects")
	require.Error(t, err)

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.True(t, refreshErr.RedirectToLogin)
	assert.ErrorIs(t, err, ErrRefreshFailed)

	// the cause is the refresh endpoint's rejection, not the original request's 401
	var cause *HTTPError
	require.ErrorAs(t, refreshErr.Err, &cause)
	assert.Contains(t, cause.URL, RefreshPath)

	assert.Empty(t, storedValue(t, store, credstore.KeyToken))
	assert.Empty(t, storedValue(t, store, credstore.KeyRefreshToken))
	assert.Equal(t, 1, redirects.count())
	assert.Same(t, refreshErr, redirects.causes[0])

	refreshCalls, seen := api.snapshot()
	assert.Equal(t, 1, refreshCalls)
	assert.Len(t, seen, 1, "original request must not be replayed after a failed refresh")
}

func TestClient_RefreshResponseWithoutToken(t *testing.T) {
	api := &fakeAPI{acceptToken: "B", refreshToken: "R", refreshBody: `{"message":"ok"}`}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	redirects := &redirectRecorder{}
	c := newTestClient(t, api, store, WithLoginRedirector(redirects))

	_, err := c.Get(context.Background(), "/projects")
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Empty(t, storedValue(t, store, credstore.KeyToken))
	assert.Equal(t, 1, redirects.count())
}

func TestClient_NoRefreshTokenPropagatesOriginalUnauthorized(t *testing.T) {
	api := &fakeAPI{acceptToken: "B", refreshToken: "R", issueToken: "B"}
	store := credstore.NewMemoryStore(map[string]string{credstore.KeyToken: "A"})
	redirects := &redirectRecorder{}
	c := newTestClient(t, api, store, WithLoginRedirector(redirects))

	_, err := c.Get(context.Background(), "/projects")
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.URL, "/projects")
	assert.Equal(t, "token expired", httpErr.Message())
	assert.NotErrorIs(t, err, ErrRefreshFailed)

	refreshCalls, _ := api.snapshot()
	assert.Zero(t, refreshCalls)
	assert.Empty(t, storedValue(t, store, credstore.KeyToken))
	assert.Zero(t, redirects.count())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_NetworkFailureNeverRefreshes(t *testing.T) {
	calls := 0
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("connection refused")
	})
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	c := New("http://api.invalid", store, WithHTTPClient(&http.Client{Transport: transport}))

	_, err := c.Get(context.Background(), "/projects")
	require.Error(t, err)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "http://api.invalid/projects", netErr.URL)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "A", storedValue(t, store, credstore.KeyToken))
	assert.Equal(t, "R", storedValue(t, store, credstore.KeyRefreshToken))
}

func TestClient_RefreshNetworkFailureIsRefreshFailure(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == RefreshPath {
			return nil, errors.New("connection reset")
		}
		rec := httptest.NewRecorder()
		unauthorized(rec, "token expired")
		return rec.Result(), nil
	})
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	redirects := &redirectRecorder{}
	c := New("http://api.invalid", store,
		WithHTTPClient(&http.Client{Transport: transport}),
		WithLoginRedirector(redirects))

	_, err := c.Get(context.Background(), "/projects")

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	var netErr *NetworkError
	assert.ErrorAs(t, refreshErr.Err, &netErr)
	assert.Empty(t, storedValue(t, store, credstore.KeyRefreshToken))
	assert.Equal(t, 1, redirects.count())
}

func TestClient_OtherHTTPFailurePropagated(t *testing.T) {
	api := &fakeAPI{acceptToken: "A", refreshToken: "R", issueToken: "B"}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	c := newTestClient(t, api, store)

	_, err := c.Get(context.Background(), "/missing")
	require.Error(t, err)

	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "PROJECT_NOT_FOUND", httpErr.Code())
	assert.NotErrorIs(t, err, ErrUnauthorized)

	refreshCalls, _ := api.snapshot()
	assert.Zero(t, refreshCalls)
	assert.Equal(t, "A", storedValue(t, store, credstore.KeyToken))
}

func TestClient_ConcurrentUnauthorizedRefreshIndependently(t *testing.T) {
	const n = 4
	gate := &sync.WaitGroup{}
	gate.Add(n)
	api := &fakeAPI{
		acceptToken:  "B",
		refreshToken: "R",
		issueToken:   "B",
		firstSend:    gate,
		staleToken:   "A",
	}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	c := newTestClient(t, api, store)

	errs := runConcurrently(n, func() error {
		_, err := c.Get(context.Background(), "/projects")
		return err
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}

	refreshCalls, _ := api.snapshot()
	assert.Equal(t, n, refreshCalls, "each request refreshes on its own without single-flight")
}

func TestClient_SingleFlightSharesRefresh(t *testing.T) {
	const n = 4
	gate := &sync.WaitGroup{}
	gate.Add(n)
	api := &fakeAPI{
		acceptToken:  "B",
		refreshToken: "R",
		issueToken:   "B",
		refreshDelay: 200 * time.Millisecond,
		firstSend:    gate,
		staleToken:   "A",
	}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "A",
		credstore.KeyRefreshToken: "R",
	})
	c := newTestClient(t, api, store, WithSingleFlightRefresh(true))

	errs := runConcurrently(n, func() error {
		_, err := c.Get(context.Background(), "/projects")
		return err
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}

	refreshCalls, seen := api.snapshot()
	assert.Equal(t, 1, refreshCalls)
	assert.Len(t, seen, 2*n)
	assert.Equal(t, "B", storedValue(t, store, credstore.KeyToken))
}

func runConcurrently(n int, fn func() error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fn()
		}(i)
	}
	wg.Wait()
	return errs
}

func TestClient_LoginStoresTokens(t *testing.T) {
	api := &fakeAPI{acceptToken: "A"}
	store := credstore.NewMemoryStore(nil)
	c := newTestClient(t, api, store)

	resp, err := c.Login(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	assert.Equal(t, "A", storedValue(t, store, credstore.KeyToken))
	assert.Equal(t, "R", storedValue(t, store, credstore.KeyRefreshToken))

	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, storedValue(t, store, credstore.KeyToken))
	assert.Empty(t, storedValue(t, store, credstore.KeyRefreshToken))
}

func TestClient_LoginRejectionIsNotRefreshed(t *testing.T) {
	api := &fakeAPI{refreshToken: "R", issueToken: "B"}
	store := credstore.NewMemoryStore(map[string]string{
		credstore.KeyToken:        "old",
		credstore.KeyRefreshToken: "R",
	})
	c := newTestClient(t, api, store)

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	refreshCalls, _ := api.snapshot()
	assert.Zero(t, refreshCalls)
	assert.Equal(t, "R", storedValue(t, store, credstore.KeyRefreshToken))
}

func TestRequest_WithRetriedReturnsCopy(t *testing.T) {
	req, err := NewRequest(http.MethodPost, "/projects", map[string]string{"name": "Apollo"})
	require.NoError(t, err)

	retried := req.WithRetried().WithHeader("Authorization", "Bearer B")

	assert.False(t, req.Retried())
	assert.True(t, retried.Retried(), "retried flag is sticky across copies")
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "Bearer B", retried.Header.Get("Authorization"))
	assert.Equal(t, req.Body, retried.Body)
	assert.Equal(t, "application/json", retried.Header.Get("Content-Type"))
}

func TestRequest_URL(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/projects", want: "http://api.test/projects"},
		{path: "projects", want: "http://api.test/projects"},
		{path: "", want: "http://api.test"},
		{path: "https://other.test/x", want: "https://other.test/x"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := &Request{Path: tt.path}
			assert.Equal(t, tt.want, req.url("http://api.test"))
		})
	}
}
