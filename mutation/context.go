package mutation

import (
	"context"

	"github.com/goliatone/go-hostel-admin/cache"
)

type invalidationsContextKey struct{}

// WithInvalidations attaches extra key patterns to invalidate after the next
// successful write run with ctx.
func WithInvalidations(ctx context.Context, keys ...cache.Key) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(keys) == 0 {
		return ctx
	}

	combined := append(invalidationsFromContext(ctx), keys...)
	return context.WithValue(ctx, invalidationsContextKey{}, combined)
}

func invalidationsFromContext(ctx context.Context) []cache.Key {
	if ctx == nil {
		return nil
	}
	if keys, ok := ctx.Value(invalidationsContextKey{}).([]cache.Key); ok {
		return append([]cache.Key(nil), keys...)
	}
	return nil
}

// dedupeKeys keeps the first occurrence of every serialized key.
// Empty keys are dropped since they would match every entry.
func dedupeKeys(keys []cache.Key) []cache.Key {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	out := make([]cache.Key, 0, len(keys))
	for _, key := range keys {
		s := key.String()
		if s == "" {
			continue
		}
		if _, exists := seen[s]; exists {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, key)
	}
	return out
}
