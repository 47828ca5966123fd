package query

import (
	"context"
	"time"

	"github.com/goliatone/go-hostel-admin/cache"
)

// State is a typed Snapshot.
type State[T any] struct {
	Key       string
	Status    Status
	Data      T
	Err       error
	Stale     bool
	Fetching  bool
	FetchedAt time.Time
}

// Fetch is the typed form of Client.Fetch.
func Fetch[T any](ctx context.Context, c *Client, key cache.Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	v, err := c.Fetch(ctx, key, erase(fn))
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}

	typed, ok := v.(T)
	if !ok {
		return zero, cache.ErrInvalidResultType
	}
	return typed, nil
}

// Observe is the typed form of Client.Subscribe. A stored value of another
// type is reported as cache.ErrInvalidResultType.
func Observe[T any](c *Client, key cache.Key, fn func(ctx context.Context) (T, error), listener func(State[T])) *Subscription {
	return c.Subscribe(key, erase(fn), func(s Snapshot) {
		listener(StateOf[T](s))
	})
}

// StateOf converts a Snapshot.
func StateOf[T any](s Snapshot) State[T] {
	st := State[T]{
		Key:       s.Key,
		Status:    s.Status,
		Err:       s.Err,
		Stale:     s.Stale,
		Fetching:  s.Fetching,
		FetchedAt: s.FetchedAt,
	}
	if s.Data != nil {
		data, ok := s.Data.(T)
		if !ok && st.Err == nil {
			st.Err = cache.ErrInvalidResultType
		}
		st.Data = data
	}
	return st
}

func erase[T any](fn func(ctx context.Context) (T, error)) FetchFunc {
	return func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
