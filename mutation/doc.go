// Package mutation runs writes and keeps the query cache consistent with them.
//
// Every write is named by an Operation and must be declared in a Table that
// maps it to the key patterns it affects:
//
//	table := mutation.Table{
//		"zones.update": func(t mutation.Target) mutation.Effect {
//			return mutation.Effect{Invalidate: []cache.Key{zoneKeys.Lists(), zoneKeys.Detail(t.ID)}}
//		},
//	}
//	runner := mutation.NewRunner(table, queryClient)
//	zone, err := mutation.Run(ctx, runner, "zones.update", mutation.Target{ID: id}, update)
//
// Effects are applied only after the write succeeds. Writes are not serialized
// against each other.
package mutation
