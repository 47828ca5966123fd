package resourcecache

import (
	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/mutation"
)

// CRUDRules declares the effects of create, update and delete on one resource:
//
//	create      invalidate R::list
//	update(id)  invalidate R::list, R::detail::id
//	delete(id)  invalidate R::list, remove R::detail::id
func CRUDRules(k Keys) mutation.Table {
	return mutation.Table{
		k.Op(ActionCreate): mutation.Invalidates(k.Lists()),
		k.Op(ActionUpdate): func(t mutation.Target) mutation.Effect {
			return mutation.Effect{
				Invalidate: []cache.Key{k.Lists(), cache.NewKey(k.Resource, opDetail, t.ID)},
			}
		},
		k.Op(ActionDelete): func(t mutation.Target) mutation.Effect {
			return mutation.Effect{
				Invalidate: []cache.Key{k.Lists()},
				Remove:     []cache.Key{cache.NewKey(k.Resource, opDetail, t.ID)},
			}
		},
	}
}

// DefaultTable is the invalidation table of the admin console. Every write
// also invalidates the dashboard, whose counts derive from the other
// resources.
func DefaultTable() mutation.Table {
	table := mutation.Table{}
	for _, k := range []Keys{HostelKeys, AdminUserKeys, ZoneKeys, MemberKeys, AnnouncementKeys, ProgramKeys} {
		table = table.Merge(CRUDRules(k))
	}

	table = table.Merge(mutation.Table{
		RegistrationKeys.Op(ActionDelete): func(t mutation.Target) mutation.Effect {
			return mutation.Effect{
				Invalidate: []cache.Key{RegistrationKeys.Lists()},
				Remove:     []cache.Key{cache.NewKey(RegistrationKeys.Resource, opDetail, t.ID)},
			}
		},
		// Placing members can move them out of other hostels, so every
		// cached hostel, list or detail, loses its capacity figures.
		HostelKeys.Op(ActionAssign):       mutation.Invalidates(HostelKeys.All()),
		HostelKeys.Op(ActionAssignAll):    mutation.Invalidates(HostelKeys.All()),
		HostelKeys.Op(ActionManualAssign): mutation.Invalidates(HostelKeys.All(), ApplicantKeys.All()),
	})

	for op, rule := range table {
		table[op] = rule.Also(DashboardKeys.All())
	}
	return table
}
