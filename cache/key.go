package cache

import "strings"

var defaultSerializer = NewDefaultKeySerializer()

// Key identifies a cached read: the resource it belongs to, the kind of read
// and the parameters that shaped it. Keys with semantically equal params
// serialize to the same string.
type Key struct {
	Resource  string
	Operation string
	Params    []any
}

// NewKey builds a Key. An empty operation produces a resource-wide pattern.
func NewKey(resource, operation string, params ...any) Key {
	return Key{Resource: resource, Operation: operation, Params: params}
}

// String returns the serialized key, segments joined by KeySeparator.
func (k Key) String() string {
	if k.Operation == "" {
		return defaultSerializer.SerializeKey(k.Resource, k.Params...)
	}
	args := make([]any, 0, len(k.Params)+1)
	args = append(args, k.Operation)
	args = append(args, k.Params...)
	return defaultSerializer.SerializeKey(k.Resource, args...)
}

// Matches reports whether key falls under this key used as a pattern.
func (k Key) Matches(key string) bool {
	return MatchesPattern(key, k.String())
}

// MatchesPattern reports whether key equals pattern or extends it by whole segments.
// "hostels::list" matches "hostels::list::{gender=male}" but not "hostels::lists".
func MatchesPattern(key, pattern string) bool {
	if pattern == "" {
		return true
	}
	if key == pattern {
		return true
	}
	return strings.HasPrefix(key, pattern+KeySeparator)
}
