package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-errors"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RateLimit = 0
	cfg.Breaker.Enabled = false
	return cfg
}

// recordedRequest is what the test server saw.
type recordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	ContentType   string
	Body          string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{
		Method:        req.Method,
		Path:          req.URL.Path,
		Query:         req.URL.Query(),
		Authorization: req.Header.Get("Authorization"),
		ContentType:   req.Header.Get("Content-Type"),
		Body:          string(body),
	})
}

func (r *recorder) last() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func newServer(t *testing.T, rec *recorder, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDo_SendsJSONWithBearerToken(t *testing.T) {
	rec := &recorder{}
	srv := newServer(t, rec, http.StatusCreated, `{"id":"z1","name":"East Zone"}`)

	client := New(testConfig(srv.URL), WithTokenSource(TokenFunc(func() string { return "tok-123" })))

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := client.Post(context.Background(), "/api/v2/crm/admin/zones/", map[string]string{"name": "East Zone"}, &out)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := rec.last()
	if req.Authorization != "Bearer tok-123" {
		t.Errorf("expected bearer token, got %q", req.Authorization)
	}
	if req.ContentType != "application/json" {
		t.Errorf("expected json content type, got %q", req.ContentType)
	}
	if req.Path != "/api/v2/crm/admin/zones/" {
		t.Errorf("expected zones path, got %q", req.Path)
	}

	var sent map[string]string
	if err := json.Unmarshal([]byte(req.Body), &sent); err != nil || sent["name"] != "East Zone" {
		t.Errorf("expected name in body, got %q", req.Body)
	}
	if out.ID != "z1" || out.Name != "East Zone" {
		t.Errorf("expected decoded zone, got %+v", out)
	}
}

func TestDo_OmitsAuthorizationWithoutToken(t *testing.T) {
	rec := &recorder{}
	srv := newServer(t, rec, http.StatusOK, `[]`)

	client := New(testConfig(srv.URL), WithTokenSource(TokenFunc(func() string { return "" })))
	if err := client.Get(context.Background(), "/api/v3/admin/zones/", url.Values{"limit": {"10"}}, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := rec.last()
	if req.Authorization != "" {
		t.Errorf("expected no authorization header, got %q", req.Authorization)
	}
	if req.Query.Get("limit") != "10" {
		t.Errorf("expected limit=10, got %v", req.Query)
	}
}

func TestDo_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category errors.Category
		textCode string
		message  string
	}{
		{"bad request", 400, `{"message":"name is required"}`, errors.CategoryBadInput, TextCodeBadRequest, "name is required"},
		{"unauthorized", 401, `{"error":"token expired"}`, errors.CategoryAuth, TextCodeUnauthorized, "token expired"},
		{"forbidden", 403, ``, errors.CategoryAuthz, TextCodeForbidden, "Forbidden"},
		{"not found", 404, `{"message":"zone not found"}`, errors.CategoryNotFound, TextCodeNotFound, "zone not found"},
		{"conflict", 409, `{}`, errors.CategoryConflict, TextCodeConflict, "Conflict"},
		{"rate limited", 429, `not json`, errors.CategoryRateLimit, TextCodeRateLimited, "Too Many Requests"},
		{"server", 502, `{"message":"upstream down"}`, errors.CategoryExternal, TextCodeServer, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, &recorder{}, tt.status, tt.body)
			client := New(testConfig(srv.URL))

			err := client.Get(context.Background(), "/api/v3/admin/zones/1", nil, nil)

			var e *errors.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T %v", err, err)
			}
			if e.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, e.Category)
			}
			if e.TextCode != tt.textCode {
				t.Errorf("expected text code %s, got %s", tt.textCode, e.TextCode)
			}
			if e.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, e.Message)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, StatusCode(err))
			}
		})
	}
}

func TestDo_UnauthorizedRunsHandlersBeforeReturning(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := newServer(t, &recorder{}, status, `{}`)

		var mu sync.Mutex
		var seen []int
		client := New(testConfig(srv.URL), WithUnauthorizedHandler(func(ctx context.Context, status int) {
			mu.Lock()
			seen = append(seen, status)
			mu.Unlock()
		}))

		err := client.Get(context.Background(), "/api/v3/admin/users/", nil, nil)
		if !IsUnauthorized(err) {
			t.Errorf("expected unauthorized error, got %v", err)
		}

		mu.Lock()
		if len(seen) != 1 || seen[0] != status {
			t.Errorf("expected handler called with %d, got %v", status, seen)
		}
		mu.Unlock()
	}
}

func TestDo_OtherErrorsDoNotRunHandlers(t *testing.T) {
	srv := newServer(t, &recorder{}, http.StatusNotFound, `{}`)
	called := false
	client := New(testConfig(srv.URL))
	client.OnUnauthorized(func(ctx context.Context, status int) { called = true })

	_ = client.Get(context.Background(), "/api/v3/admin/zones/404", nil, nil)
	if called {
		t.Error("expected handler not to run for 404")
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(testConfig(base))
	err := client.Get(context.Background(), "/api/v3/admin/zones/", nil, nil)

	if !IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
	if !errors.IsCategory(err, errors.CategoryExternal) {
		t.Errorf("expected external category, got %v", err)
	}
}

func TestDo_DecodeError(t *testing.T) {
	srv := newServer(t, &recorder{}, http.StatusOK, `{"id":`)
	client := New(testConfig(srv.URL))

	var out map[string]any
	err := client.Get(context.Background(), "/api/v3/admin/zones/1", nil, &out)

	var e *errors.Error
	if !errors.As(err, &e) || e.TextCode != TextCodeDecode {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestBreaker_OpensOnServerErrorsOnly(t *testing.T) {
	rec := &recorder{}
	srv := newServer(t, rec, http.StatusServiceUnavailable, `{}`)

	cfg := testConfig(srv.URL)
	cfg.Breaker = BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
	client := New(cfg)

	for i := 0; i < 3; i++ {
		_ = client.Get(context.Background(), "/api/v3/admin/dashboard/summary", nil, nil)
	}

	err := client.Get(context.Background(), "/api/v3/admin/dashboard/summary", nil, nil)
	var e *errors.Error
	if !errors.As(err, &e) || e.TextCode != TextCodeCircuitOpen {
		t.Errorf("expected circuit open error, got %v", err)
	}
	if rec.count() != 3 {
		t.Errorf("expected open circuit to skip the request, got %d requests", rec.count())
	}
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	rec := &recorder{}
	srv := newServer(t, rec, http.StatusNotFound, `{}`)

	cfg := testConfig(srv.URL)
	cfg.Breaker = BreakerConfig{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	client := New(cfg)

	for i := 0; i < 5; i++ {
		err := client.Get(context.Background(), "/api/v3/admin/zones/x", nil, nil)
		if !errors.IsNotFound(err) {
			t.Fatalf("request %d: expected not found, got %v", i, err)
		}
	}
	if rec.count() != 5 {
		t.Errorf("expected every request to reach the server, got %d", rec.count())
	}
}

func TestSend_ReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "name,email\nAna,ana@example.org\n")
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL))
	resp, err := client.Send(context.Background(), Request{Path: "/api/v3/admin/users/csv"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ContentType != "text/csv" {
		t.Errorf("expected text/csv, got %q", resp.ContentType)
	}
	if string(resp.Body) != "name,email\nAna,ana@example.org\n" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}
