package resourcecache

import (
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/mutation"
	"github.com/goliatone/go-hostel-admin/query"
)

// Resources is the cached view of every API resource.
type Resources struct {
	Hostels       *Hostels
	Applicants    *Applicants
	AdminUsers    *CRUD[api.AdminUser, api.CreateAdminUserRequest, api.UpdateAdminUserRequest]
	Zones         *CRUD[api.Zone, api.CreateZoneRequest, api.UpdateZoneRequest]
	Members       *CRUD[api.Member, api.MemberRequest, api.MemberRequest]
	Announcements *CRUD[api.Announcement, api.AnnouncementRequest, api.AnnouncementRequest]
	Programs      *Programs
	Registrations *Registrations
	Dashboard     *Dashboard

	queries *query.Client
	runner  *mutation.Runner
}

// New wires the facades. runner should carry DefaultTable or a superset.
func New(client *api.Client, queries *query.Client, runner *mutation.Runner) *Resources {
	return &Resources{
		Hostels: &Hostels{
			CRUD:   NewCRUD[api.Hostel, api.HostelRequest, api.HostelRequest](client.Hostels.Resource, HostelKeys, queries, runner),
			client: client.Hostels,
		},
		Applicants:    &Applicants{client: client.Applicants, queries: queries},
		AdminUsers:    NewCRUD[api.AdminUser, api.CreateAdminUserRequest, api.UpdateAdminUserRequest](client.AdminUsers, AdminUserKeys, queries, runner),
		Zones:         NewCRUD[api.Zone, api.CreateZoneRequest, api.UpdateZoneRequest](client.Zones, ZoneKeys, queries, runner),
		Members:       NewCRUD[api.Member, api.MemberRequest, api.MemberRequest](client.Members, MemberKeys, queries, runner),
		Announcements: NewCRUD[api.Announcement, api.AnnouncementRequest, api.AnnouncementRequest](client.Announcements, AnnouncementKeys, queries, runner),
		Programs: &Programs{
			CRUD:   NewCRUD[api.Program, api.CreateProgramRequest, api.UpdateProgramRequest](client.Programs.Resource, ProgramKeys, queries, runner),
			client: client.Programs,
		},
		Registrations: &Registrations{client: client.Registrations, queries: queries, runner: runner},
		Dashboard:     &Dashboard{client: client.Dashboard, queries: queries},
		queries:       queries,
		runner:        runner,
	}
}

func (r *Resources) Queries() *query.Client { return r.queries }

func (r *Resources) Runner() *mutation.Runner { return r.runner }
