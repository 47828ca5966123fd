package mutation

import "github.com/goliatone/go-hostel-admin/cache"

// Operation names a write, for example "hostels.update".
type Operation string

// Target identifies the entity a write applies to. ID is empty for creates
// and collection actions.
type Target struct {
	ID string
}

// Effect lists the key patterns a successful write touches. Remove evicts
// entries whose entity no longer exists; Invalidate marks entries stale.
type Effect struct {
	Invalidate []cache.Key
	Remove     []cache.Key
}

// Rule computes the effect of an operation on a target.
type Rule func(Target) Effect

// Table maps every permitted operation to its rule. Operations not in the
// table are rejected.
type Table map[Operation]Rule

// Merge returns a table with the rules of t and other; other wins on conflict.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for op, rule := range t {
		out[op] = rule
	}
	for op, rule := range other {
		out[op] = rule
	}
	return out
}

// Declared reports whether op has a rule.
func (t Table) Declared(op Operation) bool {
	_, ok := t[op]
	return ok
}

// Effect resolves op against target.
func (t Table) Effect(op Operation, target Target) (Effect, bool) {
	rule, ok := t[op]
	if !ok {
		return Effect{}, false
	}
	if rule == nil {
		return Effect{}, true
	}
	return rule(target), true
}

// Also returns a rule that applies both r and extra.
func (r Rule) Also(extra ...cache.Key) Rule {
	return func(target Target) Effect {
		var eff Effect
		if r != nil {
			eff = r(target)
		}
		eff.Invalidate = append(eff.Invalidate, extra...)
		return eff
	}
}

// Invalidates is a rule that marks the given patterns stale regardless of target.
func Invalidates(keys ...cache.Key) Rule {
	return func(Target) Effect {
		return Effect{Invalidate: append([]cache.Key(nil), keys...)}
	}
}
