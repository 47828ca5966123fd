package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer credential for each request.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token returns f().
func (f TokenFunc) Token() string { return f() }

// UnauthorizedHandler runs after any response with status 401 or 403, before
// the error is returned to the caller.
type UnauthorizedHandler func(ctx context.Context, status int)

// Request describes one API call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is a raw API response.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Client sends JSON requests to the API with the current bearer token.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*Response]
	metrics    *Metrics
	logger     zerolog.Logger

	mu             sync.RWMutex
	onUnauthorized []UnauthorizedHandler
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMetrics records transport metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger replaces the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthorizedHandler registers a handler for 401 and 403 responses.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = append(c.onUnauthorized, h) }
}

// New creates a transport client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.WithComponent("transport"),
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, c.metrics, c.logger)
	}
	return c
}

// OnUnauthorized registers a handler for 401 and 403 responses.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, h)
}

// Do sends req and decodes a JSON response body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "failed to decode response").
			WithTextCode(TextCodeDecode).
			WithMetadata(map[string]any{"method": req.Method, "path": req.Path})
	}
	return nil
}

// Get is Do with method GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post is Do with method POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put is Do with method PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete is Do with method DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// Send performs req and returns the raw response. Non-2xx statuses are
// returned as errors.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, errors.CategoryRateLimit, "rate limit wait aborted").
				WithTextCode(TextCodeRateLimited)
		}
	}

	start := time.Now()
	resp, err := c.execute(ctx, req)
	elapsed := time.Since(start)

	log := logging.Ctx(ctx).With().Str("component", "transport").Logger()
	if err != nil {
		status := StatusCode(err)
		c.metrics.observe(req.Method, status, elapsed)
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			c.unauthorized(ctx, status)
		}
		log.Warn().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("request failed")
		return nil, err
	}

	c.metrics.observe(req.Method, resp.Status, elapsed)
	log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.Status).
		Dur("elapsed", elapsed).
		Msg("request completed")
	return resp, nil
}

func (c *Client) execute(ctx context.Context, req Request) (*Response, error) {
	if c.breaker == nil {
		return c.roundTrip(ctx, req)
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.roundTrip(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(err, errors.CategoryExternal, "api unavailable").
			WithTextCode(TextCodeCircuitOpen)
	}
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "request failed").
			WithTextCode(TextCodeNetwork).
			WithMetadata(map[string]any{"method": req.Method, "path": req.Path})
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to read response").
			WithTextCode(TextCodeNetwork)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, statusError(httpResp.StatusCode, body, req.Method, req.Path)
	}

	return &Response{
		Status:      httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to encode request body")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to build request")
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Correlation-ID", id)
	}
	return httpReq, nil
}

func (c *Client) unauthorized(ctx context.Context, status int) {
	c.mu.RLock()
	handlers := append([]UnauthorizedHandler(nil), c.onUnauthorized...)
	c.mu.RUnlock()

	c.logger.Info().Int("status", status).Int("handlers", len(handlers)).Msg("unauthorized response, clearing session")
	for _, h := range handlers {
		h(ctx, status)
	}
}

func newBreaker(cfg BreakerConfig, m *Metrics, logger zerolog.Logger) *gobreaker.CircuitBreaker[*Response] {
	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "hostel-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			m.breakerState(to)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) {
				return true
			}
			code := StatusCode(err)
			return code > 0 && code < 500
		},
	})
}

func statusClass(status int) string {
	if status == 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}
