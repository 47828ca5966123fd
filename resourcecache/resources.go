package resourcecache

import (
	"context"
	"strings"

	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/mutation"
	"github.com/goliatone/go-hostel-admin/query"
)

// Hostels adds the assignment actions to hostel CRUD.
type Hostels struct {
	*CRUD[api.Hostel, api.HostelRequest, api.HostelRequest]
	client *api.HostelsClient
}

// Assign places one member.
func (h *Hostels) Assign(ctx context.Context, req api.AssignHostelRequest) error {
	return mutation.Exec(ctx, h.runner, HostelKeys.Op(ActionAssign), mutation.Target{ID: req.MemberID.String()}, func(ctx context.Context) error {
		return h.client.Assign(ctx, req)
	})
}

// AssignAll places every unassigned applicant.
func (h *Hostels) AssignAll(ctx context.Context) (api.AssignAllResponse, error) {
	return mutation.Run(ctx, h.runner, HostelKeys.Op(ActionAssignAll), mutation.Target{}, h.client.AssignAll)
}

// ManualAssign places members in one hostel. It does not check capacity;
// allocation.ManualAssign does that first.
func (h *Hostels) ManualAssign(ctx context.Context, req api.ManualAssignRequest) error {
	return mutation.Exec(ctx, h.runner, HostelKeys.Op(ActionManualAssign), mutation.Target{ID: req.HostelID.String()}, func(ctx context.Context) error {
		return h.client.ManualAssign(ctx, req)
	})
}

// Lookup returns the most recently fetched copy of a hostel, taken from
// whichever of its detail entry and the cached list was stored last.
// Entries invalidated by a write are ignored.
func (h *Hostels) Lookup(id api.ID) (api.Hostel, bool) {
	detail, detailAt, hasDetail := latest[api.Hostel](h.queries, h.keys.Detail(id))

	list, listAt, hasList := latest[[]api.Hostel](h.queries, h.keys.List())
	if hasList && (!hasDetail || listAt.After(detailAt)) {
		for _, hostel := range list {
			if hostel.ID == id {
				return hostel, true
			}
		}
	}
	if hasDetail {
		return detail, true
	}
	return api.Hostel{}, false
}

// Applicants caches applicant lists per filter set.
type Applicants struct {
	client  *api.ApplicantsClient
	queries *query.Client
}

// List returns the applicants matching filters. Empty filter fields are
// ignored, so they share a cache entry with the unfiltered list.
func (a *Applicants) List(ctx context.Context, filters api.ApplicantFilters) ([]api.Applicant, error) {
	filters = normalizeFilters(filters)
	return query.Fetch(ctx, a.queries, ApplicantKeys.List(filters), func(ctx context.Context) ([]api.Applicant, error) {
		return a.client.List(ctx, filters)
	})
}

// Observe keeps one filtered list fetched.
func (a *Applicants) Observe(filters api.ApplicantFilters, listener func(query.State[[]api.Applicant])) *query.Subscription {
	filters = normalizeFilters(filters)
	return query.Observe(a.queries, ApplicantKeys.List(filters), func(ctx context.Context) ([]api.Applicant, error) {
		return a.client.List(ctx, filters)
	}, listener)
}

// CSV downloads the applicant export. It is never cached.
func (a *Applicants) CSV(ctx context.Context) ([]byte, error) {
	return a.client.CSV(ctx)
}

func normalizeFilters(f api.ApplicantFilters) api.ApplicantFilters {
	f.SearchTerm = strings.TrimSpace(f.SearchTerm)
	if strings.EqualFold(f.Gender, "all") {
		f.Gender = ""
	}
	return f
}

// Programs caches the paged program list per window.
type Programs struct {
	*CRUD[api.Program, api.CreateProgramRequest, api.UpdateProgramRequest]
	client *api.ProgramsClient
}

// List returns one page of programs.
func (p *Programs) List(ctx context.Context, params api.ProgramListParams) (api.Page[api.Program], error) {
	return query.Fetch(ctx, p.queries, ProgramKeys.List(params), func(ctx context.Context) (api.Page[api.Program], error) {
		return p.client.List(ctx, params)
	})
}

// ObserveList keeps one page fetched.
func (p *Programs) ObserveList(params api.ProgramListParams, listener func(query.State[api.Page[api.Program]])) *query.Subscription {
	return query.Observe(p.queries, ProgramKeys.List(params), func(ctx context.Context) (api.Page[api.Program], error) {
		return p.client.List(ctx, params)
	}, listener)
}

// Create adds a CRM program.
func (p *Programs) Create(ctx context.Context, payload api.CreateProgramRequest) (api.Program, error) {
	return mutation.Run(ctx, p.runner, ProgramKeys.Op(ActionCreate), mutation.Target{}, func(ctx context.Context) (api.Program, error) {
		return p.client.Create(ctx, payload)
	})
}

// Registrations caches the paged registration list.
type Registrations struct {
	client  *api.RegistrationsClient
	queries *query.Client
	runner  *mutation.Runner
}

// List returns one page of registrations.
func (r *Registrations) List(ctx context.Context, params api.PageParams) (api.Page[api.Registration], error) {
	return query.Fetch(ctx, r.queries, RegistrationKeys.List(params), func(ctx context.Context) (api.Page[api.Registration], error) {
		return r.client.List(ctx, params)
	})
}

// Delete removes a registration.
func (r *Registrations) Delete(ctx context.Context, id api.ID) error {
	return mutation.Exec(ctx, r.runner, RegistrationKeys.Op(ActionDelete), mutation.Target{ID: id.String()}, func(ctx context.Context) error {
		return r.client.Delete(ctx, id)
	})
}

// Dashboard caches each dashboard panel under its own key.
type Dashboard struct {
	client  *api.DashboardClient
	queries *query.Client
}

func (d *Dashboard) Summary(ctx context.Context) (api.DashboardSummary, error) {
	return query.Fetch(ctx, d.queries, DashboardKeys.Key("summary"), d.client.Summary)
}

func (d *Dashboard) GenderDistribution(ctx context.Context) ([]api.GenderDistributionEntry, error) {
	return query.Fetch(ctx, d.queries, DashboardKeys.Key("gender_distribution"), d.client.GenderDistribution)
}

func (d *Dashboard) RecentUsers(ctx context.Context) ([]api.DashboardRecentUser, error) {
	return query.Fetch(ctx, d.queries, DashboardKeys.Key("recent_users"), d.client.RecentUsers)
}

func (d *Dashboard) LatestAnnouncements(ctx context.Context) ([]api.Announcement, error) {
	return query.Fetch(ctx, d.queries, DashboardKeys.Key("latest_announcements"), d.client.LatestAnnouncements)
}
