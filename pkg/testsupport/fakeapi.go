package testsupport

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/google/uuid"
)

// Account is a login the fake API accepts.
type Account struct {
	Password string
	User     api.AuthUser
	// TokenOnly omits the user from the login response, leaving only the token.
	TokenOnly bool
}

// Seed is the initial data of a FakeAPI.
type Seed struct {
	Accounts      []Account
	Hostels       []api.Hostel
	Applicants    []api.Applicant
	Zones         []api.Zone
	Members       []api.Member
	Announcements []api.Announcement
	Programs      []api.Program
	Registrations []api.Registration
	AdminUsers    []api.AdminUser
}

// DefaultSeed is a small consistent data set: one admin account, two hostels
// and three applicants.
func DefaultSeed() Seed {
	return Seed{
		Accounts: []Account{{
			Password: "secret",
			User:     api.AuthUser{ID: "1", Email: "admin@example.org", Name: "Admin", IsAdmin: true, Role: "admin"},
		}},
		Hostels: []api.Hostel{
			{ID: "1", Name: "Grace Hall", Location: "North", Capacity: 10, RemainingCapacity: 5, Gender: api.GenderMale},
			{ID: "2", Name: "Mercy Hall", Location: "South", Capacity: 4, RemainingCapacity: 4, Gender: api.GenderFemale},
		},
		Applicants: []api.Applicant{
			{ID: "11", Name: "Ada", Gender: api.GenderFemale, Email: "ada@example.org", Zone: "North"},
			{ID: "12", Name: "Bayo", Gender: api.GenderMale, Email: "bayo@example.org", Zone: "North"},
			{ID: "13", Name: "Chidi", Gender: api.GenderMale, Email: "chidi@example.org", Zone: "South", HostelAssigned: true},
		},
		Zones: []api.Zone{{ID: "21", Name: "North", IsActive: 1}},
	}
}

// FakeAPI is an in-memory implementation of the CRM endpoints served over
// httptest. Every route except login and registration requires a token it
// issued.
type FakeAPI struct {
	URL string

	mu       sync.Mutex
	server   *httptest.Server
	accounts map[string]Account
	tokens   map[string]api.AuthUser
	requests map[string]int
	failures map[string]failure

	hostels       *collection[api.Hostel]
	applicants    *collection[api.Applicant]
	zones         *collection[api.Zone]
	members       *collection[api.Member]
	announcements *collection[api.Announcement]
	programs      *collection[api.Program]
	registrations *collection[api.Registration]
	adminUsers    *collection[api.AdminUser]
}

type failure struct {
	status  int
	message string
}

// NewFakeAPI starts a fake API with seed and stops it when the test ends.
func NewFakeAPI(t testing.TB, seed Seed) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		accounts:      make(map[string]Account),
		tokens:        make(map[string]api.AuthUser),
		requests:      make(map[string]int),
		failures:      make(map[string]failure),
		hostels:       newCollection(seed.Hostels, func(h api.Hostel) api.ID { return h.ID }),
		applicants:    newCollection(seed.Applicants, func(a api.Applicant) api.ID { return a.ID }),
		zones:         newCollection(seed.Zones, func(z api.Zone) api.ID { return z.ID }),
		members:       newCollection(seed.Members, func(m api.Member) api.ID { return m.ID }),
		announcements: newCollection(seed.Announcements, func(a api.Announcement) api.ID { return a.ID }),
		programs:      newCollection(seed.Programs, func(p api.Program) api.ID { return p.ID }),
		registrations: newCollection(seed.Registrations, func(r api.Registration) api.ID { return r.ID }),
		adminUsers:    newCollection(seed.AdminUsers, func(u api.AdminUser) api.ID { return u.ID }),
	}
	for _, a := range seed.Accounts {
		f.accounts[strings.ToLower(a.User.Email)] = a
	}

	f.server = httptest.NewServer(f.routes())
	f.URL = f.server.URL
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(f.record)

	r.Post("/api/v3/admin/auth/login", f.login)
	r.Post("/api/v3/admin/auth/register", f.register)

	r.Group(func(r chi.Router) {
		r.Use(f.authenticate)

		mountCRUD(r, f, f.hostels, "/api/v2/crm/admin/hostels/", "/api/v3/admin/hostels/")
		r.Post("/api/v3/admin/hostels/assign", f.assign)
		r.Post("/api/v3/admin/hostels/assign-all", f.assignAll)
		r.Post("/api/v3/admin/hostels/manual-assign", f.manualAssign)

		r.Get("/api/v3/admin/users/", f.listApplicants)
		r.Get("/api/v3/admin/users/csv", f.applicantsCSV)

		mountCRUD(r, f, f.adminUsers, "/api/v3/admin/users/users/", "/api/v2/crm/admin/users/users/")
		mountCRUD(r, f, f.zones, "/api/v3/admin/zones/", "/api/v2/crm/admin/zones/")
		mountCRUD(r, f, f.members, "/api/v3/admin/members/", "/api/v3/admin/members/")
		mountCRUD(r, f, f.announcements, "/api/v2/crm/admin/announcements/", "/api/v2/crm/admin/announcements/")

		r.Get("/api/v2/programs/admin/crm", f.listPrograms)
		r.Post("/api/v2/programs/admin/crm", func(w http.ResponseWriter, req *http.Request) {
			createItem(w, req, f, f.programs)
		})
		r.Get("/api/v2/programs/admin/registrations/registrations/crm", f.listRegistrations)
		r.Delete("/api/v2/programs/admin/registrations/registrations/{id}", func(w http.ResponseWriter, req *http.Request) {
			deleteItem(w, req, f, f.registrations)
		})
		r.Get("/api/v2/programs/admin/{id}", func(w http.ResponseWriter, req *http.Request) {
			getItem(w, req, f, f.programs)
		})
		r.Put("/api/v2/programs/admin/{id}", func(w http.ResponseWriter, req *http.Request) {
			updateItem(w, req, f, f.programs)
		})
		r.Delete("/api/v2/programs/admin/{id}", func(w http.ResponseWriter, req *http.Request) {
			deleteItem(w, req, f, f.programs)
		})

		r.Get("/api/v3/admin/dashboard/summary", f.summary)
		r.Get("/api/v3/admin/dashboard/gender-distribution", f.genderDistribution)
		r.Get("/api/v3/admin/dashboard/recent-users", f.recentUsers)
		r.Get("/api/v3/admin/dashboard/latest-announcements", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]any{"data": f.announcements.list()})
		})
	})
	return r
}

// Requests returns how many requests reached "METHOD path".
func (f *FakeAPI) Requests(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+path]
}

// FailNext makes the next request to "METHOD path" fail with status.
func (f *FakeAPI) FailNext(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, message: message}
}

// RevokeTokens invalidates every issued token.
func (f *FakeAPI) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]api.AuthUser)
}

// Hostel returns the server's copy of a hostel.
func (f *FakeAPI) Hostel(id api.ID) (api.Hostel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hostels.get(id)
}

// Applicant returns the server's copy of an applicant.
func (f *FakeAPI) Applicant(id api.ID) (api.Applicant, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applicants.get(id)
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.requests[route]++
		fail, failing := f.failures[route]
		delete(f.failures, route)
		f.mu.Unlock()

		if failing {
			writeError(w, fail.status, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		_, known := f.tokens[token]
		f.mu.Unlock()

		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) issue(user api.AuthUser) string {
	token := uuid.NewString()
	f.tokens[token] = user
	return token
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[strings.ToLower(req.Email)]
	if !ok || account.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	user := account.User
	resp := api.AuthResponse{Message: "Login successful"}
	if account.TokenOnly {
		resp.Token = tokenWithClaims(user)
		f.tokens[resp.Token] = user
	} else {
		resp.Token = f.issue(user)
		resp.User = &user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, exists := f.accounts[email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	user := api.AuthUser{ID: api.ID(uuid.NewString()), Email: req.Email, Name: req.Name, Gender: req.Gender}
	f.accounts[email] = Account{Password: req.Password, User: user}
	writeJSON(w, http.StatusCreated, api.AuthResponse{User: &user, Token: f.issue(user)})
}

func (f *FakeAPI) assign(w http.ResponseWriter, r *http.Request) {
	var req api.AssignHostelRequest
	if !decode(w, r, &req) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	applicant, ok := f.applicants.get(req.MemberID)
	if !ok {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	var hostel api.Hostel
	if req.HostelID != nil {
		hostel, ok = f.hostels.get(*req.HostelID)
	} else {
		hostel, ok = f.firstFit(applicant.Gender)
	}
	if !ok || hostel.RemainingCapacity < 1 {
		writeError(w, http.StatusConflict, "no hostel space available")
		return
	}

	f.place(&applicant, &hostel)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hostel assigned"})
}

func (f *FakeAPI) assignAll(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var resp api.AssignAllResponse
	for _, applicant := range f.applicants.list() {
		if applicant.HostelAssigned {
			continue
		}
		hostel, ok := f.firstFit(applicant.Gender)
		if !ok {
			resp.UnassignedCount++
			continue
		}
		f.place(&applicant, &hostel)
		resp.AssignedCount++
	}
	resp.Message = fmt.Sprintf("Assigned %d applicants", resp.AssignedCount)
	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeAPI) manualAssign(w http.ResponseWriter, r *http.Request) {
	var req api.ManualAssignRequest
	if !decode(w, r, &req) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	hostel, ok := f.hostels.get(req.HostelID)
	if !ok {
		writeError(w, http.StatusNotFound, "hostel not found")
		return
	}
	if len(req.MemberIDs) > hostel.RemainingCapacity {
		writeError(w, http.StatusBadRequest, "hostel capacity exceeded")
		return
	}
	for _, id := range req.MemberIDs {
		applicant, ok := f.applicants.get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "member "+id.String()+" not found")
			return
		}
		f.place(&applicant, &hostel)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Members assigned"})
}

// firstFit must be called with mu held.
func (f *FakeAPI) firstFit(gender string) (api.Hostel, bool) {
	for _, h := range f.hostels.list() {
		if h.RemainingCapacity > 0 && (h.Gender == api.GenderAll || strings.EqualFold(h.Gender, gender)) {
			return h, true
		}
	}
	return api.Hostel{}, false
}

// place must be called with mu held.
func (f *FakeAPI) place(applicant *api.Applicant, hostel *api.Hostel) {
	name := hostel.Name
	applicant.HostelAssigned = true
	applicant.HostelName = &name
	hostel.RemainingCapacity--
	f.applicants.put(*applicant)
	f.hostels.put(*hostel)
}

func (f *FakeAPI) listApplicants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("searchTerm"))

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]api.Applicant, 0)
	for _, a := range f.applicants.list() {
		if g := q.Get("gender"); g != "" && !strings.EqualFold(a.Gender, g) {
			continue
		}
		if s := q.Get("state"); s != "" && !strings.EqualFold(a.State, s) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) && !strings.Contains(strings.ToLower(a.Email), search) {
			continue
		}
		out = append(out, a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) applicantsCSV(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var b strings.Builder
	b.WriteString("id,name,email,gender,zone,hostelAssigned\n")
	for _, a := range f.applicants.list() {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%t\n", a.ID, a.Name, a.Email, a.Gender, a.Zone, a.HostelAssigned)
	}
	w.Header().Set("Content-Type", "text/csv")
	_, _ = io.WriteString(w, b.String())
}

func (f *FakeAPI) listPrograms(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := strings.ToLower(r.URL.Query().Get("name"))
	var matched []api.Program
	for _, p := range f.programs.list() {
		if name == "" || strings.Contains(strings.ToLower(p.Name), name) {
			matched = append(matched, p)
		}
	}
	writePage(w, r, matched)
}

func (f *FakeAPI) listRegistrations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writePage(w, r, f.registrations.list())
}

func (f *FakeAPI) summary(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := api.DashboardSummary{ZonesCount: f.zones.len(), TotalHostels: f.hostels.len()}
	capacity, used := 0, 0
	for _, a := range f.applicants.list() {
		s.TotalUsers++
		if a.HostelAssigned {
			s.AssignedUsers++
		}
	}
	for _, h := range f.hostels.list() {
		capacity += h.Capacity
		used += h.Capacity - h.RemainingCapacity
	}
	if capacity > 0 {
		s.OccupancyRate = float64(used) / float64(capacity) * 100
	}
	writeJSON(w, http.StatusOK, s)
}

func (f *FakeAPI) genderDistribution(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[string]int{}
	for _, a := range f.applicants.list() {
		counts[a.Gender]++
	}
	writeJSON(w, http.StatusOK, []api.GenderDistributionEntry{
		{Name: "Male", Value: counts[api.GenderMale]},
		{Name: "Female", Value: counts[api.GenderFemale]},
	})
}

func (f *FakeAPI) recentUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]api.DashboardRecentUser, 0)
	for _, a := range f.applicants.list() {
		out = append(out, api.DashboardRecentUser{
			ID: a.ID, Name: a.Name, Gender: a.Gender, Email: a.Email,
			Zone: a.Zone, HostelAssigned: a.HostelAssigned, HostelName: a.HostelName,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	var window api.PageParams
	_, _ = fmt.Sscan(r.URL.Query().Get("limit"), &window.Limit)
	_, _ = fmt.Sscan(r.URL.Query().Get("offset"), &window.Offset)

	total := len(items)
	start := min(window.Offset, total)
	end := total
	if window.Limit > 0 {
		end = min(start+window.Limit, total)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": append([]T{}, items[start:end]...),
		"pagination": api.Pagination{
			Total:   total,
			Limit:   window.Limit,
			Offset:  window.Offset,
			HasMore: end < total,
		},
	})
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
