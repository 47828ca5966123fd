package mutation

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// TextCodeUnknownOperation marks a write that has no entry in the table.
const TextCodeUnknownOperation = "UNKNOWN_OPERATION"

// Invalidator is the part of the query cache a write needs.
type Invalidator interface {
	Invalidate(ctx context.Context, pattern cache.Key) int
	Remove(ctx context.Context, pattern cache.Key) int
}

// Runner performs writes and applies their declared cache effects.
type Runner struct {
	table   Table
	cache   Invalidator
	metrics *Metrics
	logger  zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records mutation metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger replaces the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner over table that applies effects to inv.
func NewRunner(table Table, inv Invalidator, opts ...Option) *Runner {
	r := &Runner{
		table:  table,
		cache:  inv,
		logger: logging.WithComponent("mutation"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the runner's operation table.
func (r *Runner) Table() Table {
	return r.table
}

// Run performs fn as operation op on target. An undeclared op fails before fn
// is called. On success the op's Remove patterns are applied, then its
// Invalidate patterns, then any patterns attached with WithInvalidations. On
// failure the cache is left untouched.
//
// fn runs detached from ctx: if ctx ends first Run returns ctx.Err() but the
// write and its invalidations still complete.
func Run[T any](ctx context.Context, r *Runner, op Operation, target Target, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	effect, ok := r.table.Effect(op, target)
	if !ok {
		return zero, unknownOperation(op)
	}
	effect.Invalidate = append(effect.Invalidate, invalidationsFromContext(ctx)...)

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	detached := context.WithoutCancel(ctx)

	go func() {
		start := time.Now()
		v, err := fn(detached)
		if err != nil {
			r.metrics.observe(op, "error", time.Since(start))
			logging.Ctx(detached).Debug().Err(err).Str("operation", string(op)).Msg("mutation failed")
			done <- result{err: err}
			return
		}
		r.metrics.observe(op, "success", time.Since(start))
		r.apply(detached, op, effect)
		done <- result{value: v}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Exec is Run for writes that return no body.
func Exec(ctx context.Context, r *Runner, op Operation, target Target, fn func(ctx context.Context) error) error {
	_, err := Run(ctx, r, op, target, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (r *Runner) apply(ctx context.Context, op Operation, effect Effect) {
	removed := dedupeKeys(effect.Remove)
	for _, key := range removed {
		r.cache.Remove(ctx, key)
	}

	invalidated := dedupeKeys(effect.Invalidate)
	for _, key := range invalidated {
		r.cache.Invalidate(ctx, key)
	}

	r.logger.Debug().
		Str("operation", string(op)).
		Int("removed", len(removed)).
		Int("invalidated", len(invalidated)).
		Msg("mutation applied")
}

func unknownOperation(op Operation) error {
	return errors.New("operation is not declared in the mutation table", errors.CategoryInternal).
		WithTextCode(TextCodeUnknownOperation).
		WithMetadata(map[string]any{"operation": string(op)})
}

// IsUnknownOperation reports whether err was returned for an undeclared op.
func IsUnknownOperation(err error) bool {
	var e *errors.Error
	return errors.As(err, &e) && e.TextCode == TextCodeUnknownOperation
}

// Metrics holds the mutation collectors. A nil *Metrics records nothing.
type Metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the mutation collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostel_admin",
			Subsystem: "mutation",
			Name:      "total",
			Help:      "Writes by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hostel_admin",
			Subsystem: "mutation",
			Name:      "duration_seconds",
			Help:      "Write latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.total, m.duration)
	}
	return m
}

func (m *Metrics) observe(op Operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.total.WithLabelValues(string(op), outcome).Inc()
	m.duration.WithLabelValues(string(op)).Observe(d.Seconds())
}
