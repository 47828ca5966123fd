package resourcecache

import (
	"context"
	"time"

	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/mutation"
	"github.com/goliatone/go-hostel-admin/query"
)

// CRUDClient is the uncached resource client a CRUD facade wraps.
// *api.Resource satisfies it.
type CRUDClient[T, C, U any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id api.ID) (T, error)
	Create(ctx context.Context, payload C) (T, error)
	Update(ctx context.Context, id api.ID, payload U) (T, error)
	Delete(ctx context.Context, id api.ID) error
}

// CRUD serves reads of one resource through the query client and runs writes
// through the mutation runner, which invalidates the declared keys after the
// server accepts them.
type CRUD[T, C, U any] struct {
	base    CRUDClient[T, C, U]
	keys    Keys
	queries *query.Client
	runner  *mutation.Runner
}

// NewCRUD wraps base. keys must match the rules declared in the runner's table.
func NewCRUD[T, C, U any](base CRUDClient[T, C, U], keys Keys, queries *query.Client, runner *mutation.Runner) *CRUD[T, C, U] {
	return &CRUD[T, C, U]{
		base:    base,
		keys:    keys,
		queries: queries,
		runner:  runner,
	}
}

func (c *CRUD[T, C, U]) Keys() Keys { return c.keys }

// List returns the cached list, fetching it when missing or stale.
func (c *CRUD[T, C, U]) List(ctx context.Context) ([]T, error) {
	return query.Fetch(ctx, c.queries, c.keys.List(), c.base.List)
}

// Get returns the cached record, fetching it when missing or stale.
func (c *CRUD[T, C, U]) Get(ctx context.Context, id api.ID) (T, error) {
	return query.Fetch(ctx, c.queries, c.keys.Detail(id), func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, id)
	})
}

// Create invalidates the lists after the server accepts the record.
func (c *CRUD[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	return mutation.Run(ctx, c.runner, c.keys.Op(ActionCreate), mutation.Target{}, func(ctx context.Context) (T, error) {
		return c.base.Create(ctx, payload)
	})
}

// Update invalidates the lists and the record's detail.
func (c *CRUD[T, C, U]) Update(ctx context.Context, id api.ID, payload U) (T, error) {
	return mutation.Run(ctx, c.runner, c.keys.Op(ActionUpdate), mutation.Target{ID: id.String()}, func(ctx context.Context) (T, error) {
		return c.base.Update(ctx, id, payload)
	})
}

// Delete invalidates the lists and evicts the record's detail.
func (c *CRUD[T, C, U]) Delete(ctx context.Context, id api.ID) error {
	return mutation.Exec(ctx, c.runner, c.keys.Op(ActionDelete), mutation.Target{ID: id.String()}, func(ctx context.Context) error {
		return c.base.Delete(ctx, id)
	})
}

// ObserveList keeps the list fetched and reports every change until the
// subscription ends.
func (c *CRUD[T, C, U]) ObserveList(listener func(query.State[[]T])) *query.Subscription {
	return query.Observe(c.queries, c.keys.List(), c.base.List, listener)
}

// ObserveDetail keeps one record fetched and reports every change.
func (c *CRUD[T, C, U]) ObserveDetail(id api.ID, listener func(query.State[T])) *query.Subscription {
	return query.Observe(c.queries, c.keys.Detail(id), func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, id)
	}, listener)
}

// CachedList returns the list last stored in the cache without fetching.
func (c *CRUD[T, C, U]) CachedList() ([]T, bool) {
	return peek[[]T](c.queries, c.keys.List())
}

// CachedDetail returns the record last stored in the cache without fetching.
func (c *CRUD[T, C, U]) CachedDetail(id api.ID) (T, bool) {
	return peek[T](c.queries, c.keys.Detail(id))
}

func peek[T any](queries *query.Client, key cache.Key) (T, bool) {
	var zero T
	snap, ok := queries.Peek(key)
	if !ok || !snap.HasData() {
		return zero, false
	}
	state := query.StateOf[T](snap)
	if state.Err != nil && snap.Err == nil {
		return zero, false
	}
	return state.Data, true
}

// latest is peek for reads that must reflect the server: stale entries are
// skipped and the fetch time is returned alongside the data.
func latest[T any](queries *query.Client, key cache.Key) (T, time.Time, bool) {
	var zero T
	snap, ok := queries.Peek(key)
	if !ok || snap.Stale || snap.Status != query.StatusSuccess {
		return zero, time.Time{}, false
	}
	data, ok := snap.Data.(T)
	if !ok {
		return zero, time.Time{}, false
	}
	return data, snap.FetchedAt, true
}
