// Package cache defines cache keys and the read-through store used by the query layer.
//
// # Keys
//
// A Key is the tuple (resource, operation, params). Its string form joins the
// segments with KeySeparator:
//
//	cache.NewKey("hostels", "list").String()                     // hostels::list
//	cache.NewKey("hostels", "detail", api.ID("7")).String()      // hostels::detail::7
//	cache.NewKey("applicants", "list", filters).String()         // applicants::list::{gender=male}
//
// Params are normalized so that semantically equal filters share a key:
//
//   - Maps and structs render as {name=value,...} sorted by name
//   - Struct names come from the json tag when present
//   - nil values, empty strings and zero omitempty fields are dropped
//   - Top-level params that render empty are skipped entirely
//   - String values are query-escaped, so "a,b" or "a::b" stay one value
//
// A key doubles as a pattern. MatchesPattern matches whole segments only, so
// "hostels::list" covers every list variant but never "hostels::lists".
//
// # Store
//
// CacheService is the storage contract: concurrent GetOrFetch calls with the
// same key share a single fetch. The default implementation wraps sturdyc:
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	v, err := svc.GetOrFetch(ctx, key.String(), func(ctx context.Context) (any, error) {
//		return client.List(ctx)
//	})
//
// Errors returned by a fetch are never stored.
package cache
