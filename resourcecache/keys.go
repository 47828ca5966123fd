package resourcecache

import (
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/mutation"
)

const (
	opList   = "list"
	opDetail = "detail"
)

// Keys builds the cache keys of one resource:
//
//	zones                 everything
//	zones::list           every list variant
//	zones::list::{…}      one filtered list
//	zones::detail::7      one record
type Keys struct {
	Resource string
}

func (k Keys) All() cache.Key { return cache.NewKey(k.Resource, "") }

func (k Keys) Lists() cache.Key { return cache.NewKey(k.Resource, opList) }

// List is the key of one list variant. Params that are zero or empty are
// left out, so an absent filter and an empty one share a key.
func (k Keys) List(params ...any) cache.Key { return cache.NewKey(k.Resource, opList, params...) }

func (k Keys) Details() cache.Key { return cache.NewKey(k.Resource, opDetail) }

func (k Keys) Detail(id api.ID) cache.Key {
	return cache.NewKey(k.Resource, opDetail, id.String())
}

// Key is a named read that is neither a list nor a detail, such as a
// dashboard panel.
func (k Keys) Key(name string, params ...any) cache.Key {
	return cache.NewKey(k.Resource, name, params...)
}

// Op names an operation on the resource, e.g. "zones.create".
func (k Keys) Op(action string) mutation.Operation {
	return mutation.Operation(k.Resource + "." + action)
}

// Resource keys used by the default table and the facades.
var (
	HostelKeys       = Keys{Resource: "hostels"}
	ApplicantKeys    = Keys{Resource: "applicants"}
	AdminUserKeys    = Keys{Resource: "admin_users"}
	ZoneKeys         = Keys{Resource: "zones"}
	MemberKeys       = Keys{Resource: "members"}
	AnnouncementKeys = Keys{Resource: "announcements"}
	ProgramKeys      = Keys{Resource: "programs"}
	RegistrationKeys = Keys{Resource: "registrations"}
	DashboardKeys    = Keys{Resource: "dashboard"}
)

// Write actions shared by every CRUD resource.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionAssign       = "assign"
	ActionAssignAll    = "assign_all"
	ActionManualAssign = "manual_assign"
)
