// Package query is the read side of the admin client: a keyed cache of server
// state with in-flight de-duplication, a freshness window, bounded retries and
// live observers.
//
// Reads are identified by cache.Key. A read returns the stored value while it is
// fresh; otherwise it joins the fetch already running for that key or starts
// one:
//
//	client := query.NewClient(query.DefaultConfig(), store)
//	hostels, err := query.Fetch(ctx, client, keys.List(nil), api.Hostels.List)
//
// Observers registered with Subscribe or Observe receive every state change.
// Invalidate marks entries under a key pattern stale and refetches the observed
// ones; a result from a fetch that started before the invalidation is dropped.
// Entries nobody observes are collected after GCTime.
package query
