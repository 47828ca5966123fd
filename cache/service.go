package cache

import (
	"context"

	"github.com/goliatone/go-errors"
)

// ErrInvalidResultType is returned when a cached value cannot be converted to
// the requested type.
var ErrInvalidResultType = errors.New("cached value has unexpected type", errors.CategoryInternal).
	WithTextCode("INVALID_RESULT_TYPE")

// KeySerializer builds a cache key from a resource name plus arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(resource string, args ...any) string
}

// CacheService exposes the read-through operations the query layer relies on.
// Concurrent GetOrFetch calls for the same key must share a single fetchFn invocation.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
