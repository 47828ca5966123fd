package query

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

const flightSeparator = "#"

// Client is the read cache. Every read goes through Fetch or Subscribe with a
// cache.Key; concurrent reads of one key share a single fetch.
type Client struct {
	cfg         Config
	store       cache.CacheService
	entries     *xsync.MapOf[string, *entry]
	idle        *expirable.LRU[string, uint64]
	flights     atomic.Uint64
	metrics     *Metrics
	logger      zerolog.Logger
	now         func() time.Time
	shouldRetry func(error) bool
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records query metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger replaces the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock replaces time.Now, used by freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithShouldRetry replaces DefaultShouldRetry.
func WithShouldRetry(fn func(error) bool) Option {
	return func(c *Client) { c.shouldRetry = fn }
}

// NewClient creates a query client on top of store, which provides in-flight
// de-duplication for each fetch.
func NewClient(cfg Config, store cache.CacheService, opts ...Option) *Client {
	c := &Client{
		cfg:         cfg,
		store:       store,
		entries:     xsync.NewMapOf[string, *entry](),
		logger:      logging.WithComponent("query"),
		now:         time.Now,
		shouldRetry: DefaultShouldRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.idle = expirable.NewLRU[string, uint64](cfg.MaxIdleEntries, c.collect, cfg.GCTime)
	return c
}

// Fetch returns the value for key, from the cache when fresh, otherwise from fn
// or from a fetch already in flight for key. If ctx ends first Fetch returns
// ctx.Err(); the fetch itself keeps running and still updates the cache.
func (c *Client) Fetch(ctx context.Context, key cache.Key, fn FetchFunc) (any, error) {
	k := key.String()
	e := c.lockEntry(k)
	e.fn = fn

	if c.freshLocked(e) {
		data := e.data
		e.mu.Unlock()
		c.metrics.hit(k)
		return data, nil
	}

	seq, started := c.beginLocked(e)
	snap := e.snapshotLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	if started {
		notify(listeners, snap)
	}
	defer c.markIdle(k, e)

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := c.execute(context.WithoutCancel(ctx), e, seq, fn)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns the entry for key without fetching.
func (c *Client) Peek(key cache.Key) (Snapshot, bool) {
	e, ok := c.entries.Load(key.String())
	if !ok {
		return Snapshot{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(), true
}

// SetData stores data for key as a fresh successful read.
func (c *Client) SetData(key cache.Key, data any) {
	k := key.String()
	e := c.lockEntry(k)
	e.seq = c.flights.Add(1)
	e.fetching = false
	e.status = StatusSuccess
	e.data = data
	e.err = nil
	e.stale = false
	e.fetchedAt = c.now()
	snap := e.snapshotLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	notify(listeners, snap)
	c.markIdle(k, e)
}

// Subscription is a live observer registered with Subscribe.
type Subscription struct {
	client *Client
	entry  *entry
	id     uint64
	once   atomic.Bool
}

// Key returns the serialized key being observed.
func (s *Subscription) Key() string {
	return s.entry.key
}

// Unsubscribe stops delivery. The entry stays cached until GCTime elapses.
func (s *Subscription) Unsubscribe() {
	if !s.once.CompareAndSwap(false, true) {
		return
	}
	s.entry.mu.Lock()
	delete(s.entry.subs, s.id)
	s.entry.mu.Unlock()
	s.client.markIdle(s.entry.key, s.entry)
}

// Subscribe observes key. The listener gets the current state immediately and
// every change after that. When the entry is not fresh a background fetch
// starts. Invalidating an observed entry refetches it.
func (c *Client) Subscribe(key cache.Key, fn FetchFunc, listener Listener) *Subscription {
	k := key.String()
	e := c.lockEntry(k)
	e.fn = fn

	id := e.nextSub
	e.nextSub++
	e.subs[id] = listener

	var (
		seq     uint64
		started bool
	)
	if !c.freshLocked(e) {
		seq, started = c.beginLocked(e)
	}
	snap := e.snapshotLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	if started {
		notify(listeners, snap)
		go c.execute(context.Background(), e, seq, fn) //nolint:errcheck // delivered to listeners
	} else {
		listener(snap)
	}

	return &Subscription{client: c, entry: e, id: id}
}

// Invalidate marks every entry under pattern stale. Observed entries refetch
// right away; a fetch already in flight for them can no longer settle.
func (c *Client) Invalidate(ctx context.Context, pattern cache.Key) int {
	return c.invalidate(ctx, pattern.String(), false)
}

// Refetch invalidates entries under pattern and refetches every one that has
// a known fetch function, observed or not.
func (c *Client) Refetch(ctx context.Context, pattern cache.Key) int {
	return c.invalidate(ctx, pattern.String(), true)
}

func (c *Client) invalidate(ctx context.Context, p string, force bool) int {
	count := 0
	c.entries.Range(func(k string, e *entry) bool {
		if !cache.MatchesPattern(k, p) {
			return true
		}
		count++

		e.mu.Lock()
		e.stale = true
		e.abandonLocked()
		e.seq = c.flights.Add(1)

		fn := e.fn
		var (
			seq     uint64
			started bool
		)
		if fn != nil && (force || len(e.subs) > 0) {
			seq, started = c.beginLocked(e)
		}
		snap := e.snapshotLocked()
		listeners := e.listenersLocked()
		e.mu.Unlock()

		c.metrics.invalidated(k, "stale")
		notify(listeners, snap)
		if started {
			go c.execute(context.WithoutCancel(ctx), e, seq, fn) //nolint:errcheck // delivered to listeners
		}
		return true
	})

	if count > 0 {
		c.logger.Debug().Str("pattern", p).Int("entries", count).Msg("invalidated")
	}
	return count
}

// Remove evicts every entry under pattern. Observed entries lose their data
// and refetch; unobserved entries are dropped.
func (c *Client) Remove(ctx context.Context, pattern cache.Key) int {
	p := pattern.String()
	count := 0

	c.entries.Range(func(k string, e *entry) bool {
		if !cache.MatchesPattern(k, p) {
			return true
		}
		count++

		e.mu.Lock()
		e.resetLocked()
		e.seq = c.flights.Add(1)

		fn := e.fn
		var (
			seq     uint64
			started bool
		)
		if fn != nil && len(e.subs) > 0 {
			seq, started = c.beginLocked(e)
		} else {
			e.removed = true
		}
		snap := e.snapshotLocked()
		listeners := e.listenersLocked()
		removed := e.removed
		e.mu.Unlock()

		if removed {
			c.entries.Delete(k)
		}
		_ = c.store.DeleteByPrefix(ctx, k+flightSeparator)
		c.metrics.invalidated(k, "removed")
		notify(listeners, snap)
		if started {
			go c.execute(context.WithoutCancel(ctx), e, seq, fn) //nolint:errcheck // delivered to listeners
		}
		return true
	})

	c.metrics.setEntries(c.entries.Size())
	if count > 0 {
		c.logger.Debug().Str("pattern", p).Int("entries", count).Msg("removed")
	}
	return count
}

// Clear drops every entry, observed or not. Used when the session ends.
func (c *Client) Clear(ctx context.Context) {
	c.entries.Range(func(k string, e *entry) bool {
		e.mu.Lock()
		e.resetLocked()
		e.seq = c.flights.Add(1)
		e.removed = true
		snap := e.snapshotLocked()
		listeners := e.listenersLocked()
		e.mu.Unlock()

		c.entries.Delete(k)
		notify(listeners, snap)
		return true
	})
	c.idle.Purge()
	_ = c.store.DeleteByPrefix(ctx, "")
	c.metrics.setEntries(0)
}

// Len returns the number of live entries.
func (c *Client) Len() int {
	return c.entries.Size()
}

// lockEntry returns the live entry for k with its mutex held.
func (c *Client) lockEntry(k string) *entry {
	for {
		e, loaded := c.entries.LoadOrCompute(k, func() *entry { return newEntry(k) })
		if !loaded {
			c.metrics.setEntries(c.entries.Size())
		}
		e.mu.Lock()
		if !e.removed {
			return e
		}
		e.mu.Unlock()
	}
}

// freshLocked must be called with e.mu held.
func (c *Client) freshLocked(e *entry) bool {
	if e.status != StatusSuccess || e.stale || e.fetching {
		return false
	}
	return c.now().Sub(e.fetchedAt) < c.cfg.StaleTime
}

// beginLocked joins the flight in progress or starts a new one.
// Must be called with e.mu held.
func (c *Client) beginLocked(e *entry) (uint64, bool) {
	if e.fetching {
		return e.seq, false
	}
	e.seq = c.flights.Add(1)
	e.fetching = true
	e.status = StatusLoading
	return e.seq, true
}

// execute runs flight seq through the store so concurrent callers share it.
func (c *Client) execute(ctx context.Context, e *entry, seq uint64, fn FetchFunc) (any, error) {
	flightKey := e.key + flightSeparator + strconv.FormatUint(seq, 10)
	return c.store.GetOrFetch(ctx, flightKey, func(ctx context.Context) (any, error) {
		v, err := c.load(ctx, e.key, fn)
		c.settle(ctx, e, seq, v, err)
		return v, err
	})
}

// load calls fn, retrying up to cfg.Retry times.
func (c *Client) load(ctx context.Context, key string, fn FetchFunc) (any, error) {
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			c.metrics.fetch(key, "success")
			return v, nil
		}

		if attempt >= c.cfg.Retry || !c.shouldRetry(err) {
			c.metrics.fetch(key, "error")
			c.logger.Debug().Err(err).Str("key", key).Int("attempts", attempt+1).Msg("fetch failed")
			return nil, err
		}

		c.metrics.retry(key)
		if c.cfg.RetryDelay > 0 {
			timer := time.NewTimer(c.cfg.RetryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}
	}
}

// settle records the outcome of flight seq unless an invalidation superseded it.
func (c *Client) settle(ctx context.Context, e *entry, seq uint64, v any, err error) {
	e.mu.Lock()
	if e.seq != seq || !e.fetching {
		e.mu.Unlock()
		return
	}

	e.fetching = false
	now := c.now()
	if err != nil {
		e.status = StatusError
		e.err = err
		e.errorAt = now
	} else {
		e.status = StatusSuccess
		e.data = v
		e.err = nil
		e.stale = false
		e.fetchedAt = now
	}

	previous := e.settled
	e.settled = seq
	snap := e.snapshotLocked()
	listeners := e.listenersLocked()
	e.mu.Unlock()

	if previous != 0 {
		_ = c.store.Delete(ctx, e.key+flightSeparator+strconv.FormatUint(previous, 10))
	}
	notify(listeners, snap)
}

// markIdle hands an unobserved entry to the idle LRU.
func (c *Client) markIdle(k string, e *entry) {
	e.mu.Lock()
	if len(e.subs) > 0 || e.removed {
		e.mu.Unlock()
		return
	}
	e.idleToken++
	token := e.idleToken
	e.mu.Unlock()

	c.idle.Add(k, token)
}

// collect is the idle LRU eviction callback. It runs with the LRU lock held.
func (c *Client) collect(k string, token uint64) {
	dropped := false
	c.entries.Compute(k, func(e *entry, loaded bool) (*entry, bool) {
		if !loaded {
			return e, true
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if len(e.subs) > 0 || e.fetching || e.idleToken != token {
			return e, false
		}
		e.removed = true
		dropped = true
		return e, true
	})

	if dropped {
		_ = c.store.DeleteByPrefix(context.Background(), k+flightSeparator)
		c.metrics.setEntries(c.entries.Size())
		c.logger.Debug().Str("key", k).Msg("collected idle entry")
	}
}
