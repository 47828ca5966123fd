package di

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/allocation"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/auth"
	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/config"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/goliatone/go-hostel-admin/mutation"
	"github.com/goliatone/go-hostel-admin/query"
	"github.com/goliatone/go-hostel-admin/resourcecache"
	"github.com/goliatone/go-hostel-admin/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// RedirectFunc is told where the user should go next, for example after the
// API rejected the session.
type RedirectFunc func(ctx context.Context, path string)

// Container owns one wired client: cache store, query client, session,
// transport, resource facades and the allocation pre-check. Build it once
// per process.
type Container struct {
	config   config.Config
	store    cache.CacheService
	queries  *query.Client
	runner   *mutation.Runner
	session  *auth.Store
	http     *transport.Client
	client   *api.Client
	res      *resourcecache.Resources
	auth     *auth.Service
	gate     *auth.Gate
	assigner *allocation.Assigner
	logger   zerolog.Logger

	httpClient *http.Client
	registry   prometheus.Registerer
	storage    auth.Storage
	redirect   RedirectFunc
}

// Option customises a Container.
type Option func(*Container)

// WithHTTPClient replaces the http.Client used by the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Container) { c.httpClient = hc }
}

// WithRegistry registers metrics on reg, regardless of metrics.enabled.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(c *Container) { c.registry = reg }
}

// WithSessionStorage overrides the storage selected by auth.type.
func WithSessionStorage(s auth.Storage) Option {
	return func(c *Container) { c.storage = s }
}

// WithRedirect sets the navigation callback.
func WithRedirect(fn RedirectFunc) Option {
	return func(c *Container) { c.redirect = fn }
}

// NewContainer validates cfg and wires every component. The persisted
// session is restored before the container is returned; an unreadable
// session starts anonymous.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config: cfg,
		logger: logging.WithComponent("di"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil && cfg.Metrics.Enabled {
		c.registry = prometheus.DefaultRegisterer
	}

	store, err := cache.NewCacheService(cfg.Cache)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "create cache store")
	}
	c.store = store

	var (
		queryOpts     []query.Option
		mutationOpts  []mutation.Option
		transportOpts []transport.Option
	)
	if c.registry != nil {
		queryOpts = append(queryOpts, query.WithMetrics(query.NewMetrics(c.registry)))
		mutationOpts = append(mutationOpts, mutation.WithMetrics(mutation.NewMetrics(c.registry)))
		transportOpts = append(transportOpts, transport.WithMetrics(transport.NewMetrics(c.registry)))
	}
	c.queries = query.NewClient(cfg.Query, store, queryOpts...)

	if c.storage == nil {
		c.storage, err = auth.NewStorage(cfg.Auth)
		if err != nil {
			return nil, err
		}
	}
	c.session = auth.NewStore(c.storage)
	if err := c.session.Load(ctx); err != nil {
		var e *errors.Error
		if !errors.As(err, &e) || e.TextCode != auth.TextCodeSessionDecode {
			_ = c.session.Close()
			return nil, err
		}
	}

	transportOpts = append(transportOpts,
		transport.WithTokenSource(c.session),
		transport.WithUnauthorizedHandler(c.onUnauthorized),
	)
	if c.httpClient != nil {
		transportOpts = append(transportOpts, transport.WithHTTPClient(c.httpClient))
	}
	c.http = transport.New(cfg.API, transportOpts...)
	c.client = api.New(c.http)

	c.runner = mutation.NewRunner(resourcecache.DefaultTable(), c.queries, mutationOpts...)
	c.res = resourcecache.New(c.client, c.queries, c.runner)
	c.auth = auth.NewService(c.client.Auth, c.session, auth.WithClearer(c.queries))
	c.gate = auth.NewGate(c.session)
	c.assigner = allocation.NewAssigner(c.res.Hostels)

	c.logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("session", string(c.session.State())).
		Bool("metrics", c.registry != nil).
		Msg("container ready")
	return c, nil
}

// onUnauthorized drops the session and every cached query, then sends the
// user to the login page.
func (c *Container) onUnauthorized(ctx context.Context, status int) {
	if err := c.session.ClearAuth(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist cleared session")
	}
	c.queries.Clear(ctx)
	if c.redirect != nil {
		c.redirect(ctx, auth.LoginPath)
	}
}

// Config returns the configuration the container was built with.
func (c *Container) Config() config.Config {
	return c.config
}

// CacheService returns the store backing in-flight de-duplication.
func (c *Container) CacheService() cache.CacheService {
	return c.store
}

func (c *Container) Queries() *query.Client { return c.queries }

func (c *Container) Runner() *mutation.Runner { return c.runner }

func (c *Container) Session() *auth.Store { return c.session }

func (c *Container) Transport() *transport.Client { return c.http }

// API returns the uncached endpoint client.
func (c *Container) API() *api.Client { return c.client }

// Resources returns the cached resource facades.
func (c *Container) Resources() *resourcecache.Resources { return c.res }

func (c *Container) Auth() *auth.Service { return c.auth }

func (c *Container) Gate() *auth.Gate { return c.gate }

func (c *Container) Assigner() *allocation.Assigner { return c.assigner }

// Close releases the session storage.
func (c *Container) Close() error {
	return c.session.Close()
}
