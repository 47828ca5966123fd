package di

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/allocation"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/auth"
	"github.com/goliatone/go-hostel-admin/pkg/testsupport"
)

type redirectRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *redirectRecorder) redirect(ctx context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *redirectRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func signedIn(t *testing.T, opts ...Option) (*Container, *testsupport.FakeAPI) {
	t.Helper()

	fake := testsupport.NewFakeAPI(t, testsupport.DefaultSeed())
	container, err := NewContainer(context.Background(), testConfig(fake.URL), opts...)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if _, err := container.Auth().Login(context.Background(), "admin@example.org", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return container, fake
}

func containsZone(zones []api.Zone, name string) (api.Zone, bool) {
	for _, z := range zones {
		if z.Name == name {
			return z, true
		}
	}
	return api.Zone{}, false
}

func TestEndToEndZoneFlow(t *testing.T) {
	container, fake := signedIn(t)
	zones := container.Resources().Zones
	ctx := context.Background()

	list, err := zones.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected seeded zone, got %v", list)
	}

	// Cached until a write.
	_, _ = zones.List(ctx)
	if n := fake.Requests("GET", "/api/v3/admin/zones/"); n != 1 {
		t.Errorf("expected one list request, got %d", n)
	}

	created, err := zones.Create(ctx, api.CreateZoneRequest{Name: "East Zone", Description: "new", IsActive: 1})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err = zones.List(ctx)
	if err != nil {
		t.Fatalf("list after create failed: %v", err)
	}
	if _, ok := containsZone(list, "East Zone"); !ok {
		t.Errorf("expected list to contain East Zone after create, got %v", list)
	}
	if n := fake.Requests("GET", "/api/v3/admin/zones/"); n != 2 {
		t.Errorf("expected create to force a refetch, got %d list requests", n)
	}

	detail, err := zones.Get(ctx, created.ID)
	if err != nil || detail.Description != "new" {
		t.Fatalf("expected detail with description new, got %+v %v", detail, err)
	}

	edited := "edited"
	if _, err := zones.Update(ctx, created.ID, api.UpdateZoneRequest{Description: &edited}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	detail, err = zones.Get(ctx, created.ID)
	if err != nil || detail.Description != "edited" {
		t.Errorf("expected updated detail, got %+v %v", detail, err)
	}

	if err := zones.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	list, _ = zones.List(ctx)
	if _, ok := containsZone(list, "East Zone"); ok {
		t.Errorf("expected East Zone to be gone, got %v", list)
	}
	if _, ok := zones.CachedDetail(created.ID); ok {
		t.Error("expected deleted detail to be evicted")
	}
	if _, err := zones.Get(ctx, created.ID); !errors.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestFailedWriteKeepsCache(t *testing.T) {
	container, fake := signedIn(t)
	zones := container.Resources().Zones
	ctx := context.Background()

	if _, err := zones.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	fake.FailNext("POST", "/api/v2/crm/admin/zones/", http.StatusConflict, "zone exists")
	_, err := zones.Create(ctx, api.CreateZoneRequest{Name: "North", IsActive: 1})
	if !errors.IsCategory(err, errors.CategoryConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := zones.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if n := fake.Requests("GET", "/api/v3/admin/zones/"); n != 1 {
		t.Errorf("expected failed write to leave the list cached, got %d requests", n)
	}
}

func TestManualAssignWithCapacityCheck(t *testing.T) {
	container, fake := signedIn(t)
	ctx := context.Background()

	if _, err := container.Resources().Hostels.List(ctx); err != nil {
		t.Fatalf("list hostels failed: %v", err)
	}
	before := fake.Requests("POST", "/api/v3/admin/hostels/manual-assign")

	err := container.Assigner().ManualAssign(ctx, "2", []api.ID{"11", "12", "13", "14", "15"})
	if !allocation.IsCapacityExceeded(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	var e *errors.Error
	if errors.As(err, &e) && e.Message != "Not enough space. Only 4 spots available." {
		t.Errorf("unexpected message %q", e.Message)
	}
	if n := fake.Requests("POST", "/api/v3/admin/hostels/manual-assign"); n != before {
		t.Errorf("expected no request for an over-capacity selection, got %d", n-before)
	}

	if err := container.Assigner().ManualAssign(ctx, "1", []api.ID{"11", "12"}); err != nil {
		t.Fatalf("manual assign failed: %v", err)
	}

	hostels, err := container.Resources().Hostels.List(ctx)
	if err != nil {
		t.Fatalf("list hostels failed: %v", err)
	}
	for _, h := range hostels {
		if h.ID == "1" && h.RemainingCapacity != 3 {
			t.Errorf("expected refetched hostel with 3 spots, got %d", h.RemainingCapacity)
		}
	}

	applicants, err := container.Resources().Applicants.List(ctx, api.ApplicantFilters{})
	if err != nil {
		t.Fatalf("list applicants failed: %v", err)
	}
	if unassigned := allocation.UnassignedApplicants(applicants); len(unassigned) != 0 {
		t.Errorf("expected every applicant placed, got %v", unassigned)
	}
}

func TestCapacityCheckUsesLatestFetch(t *testing.T) {
	container, fake := signedIn(t)
	ctx := context.Background()
	hostels := container.Resources().Hostels

	detail, err := hostels.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get hostel failed: %v", err)
	}
	if detail.RemainingCapacity != 5 {
		t.Fatalf("expected 5 spots, got %d", detail.RemainingCapacity)
	}

	if err := container.Assigner().ManualAssign(ctx, "1", []api.ID{"11", "12"}); err != nil {
		t.Fatalf("manual assign failed: %v", err)
	}
	if _, err := hostels.List(ctx); err != nil {
		t.Fatalf("list hostels failed: %v", err)
	}
	if h, ok := hostels.Lookup("1"); !ok || h.RemainingCapacity != 3 {
		t.Fatalf("expected lookup to report 3 spots, got %+v %v", h, ok)
	}

	before := fake.Requests("POST", "/api/v3/admin/hostels/manual-assign")
	err = container.Assigner().ManualAssign(ctx, "1", []api.ID{"21", "22", "23", "24"})
	if !allocation.IsCapacityExceeded(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if n := fake.Requests("POST", "/api/v3/admin/hostels/manual-assign"); n != before {
		t.Errorf("expected no request for an over-capacity selection, got %d", n-before)
	}
}

func TestUnauthorizedClearsSessionAndCache(t *testing.T) {
	redirects := &redirectRecorder{}
	container, fake := signedIn(t, WithRedirect(redirects.redirect))
	ctx := context.Background()

	if _, err := container.Resources().Zones.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if container.Queries().Len() == 0 {
		t.Fatal("expected a cached list")
	}

	fake.RevokeTokens()
	_, err := container.Resources().Hostels.List(ctx)
	if !errors.IsCategory(err, errors.CategoryAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}

	if container.Session().IsAuthenticated() {
		t.Error("expected session to be cleared")
	}
	if container.Session().Token() != "" {
		t.Error("expected token to be dropped")
	}
	if n := container.Queries().Len(); n != 0 {
		t.Errorf("expected cache to be cleared, got %d entries", n)
	}
	if got := redirects.recorded(); len(got) != 1 || got[0] != auth.LoginPath {
		t.Errorf("expected redirect to %s, got %v", auth.LoginPath, got)
	}
	if d := container.Gate().Check("/hostels"); d.Allow || d.Redirect != auth.LoginPath {
		t.Errorf("expected gate to send anonymous user to login, got %+v", d)
	}
}

func TestLogoutClearsCache(t *testing.T) {
	container, fake := signedIn(t)
	ctx := context.Background()

	if _, err := container.Resources().Dashboard.Summary(ctx); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if err := container.Auth().Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if container.Queries().Len() != 0 {
		t.Error("expected logout to clear cached queries")
	}

	if _, err := container.Auth().Login(ctx, "admin@example.org", "secret"); err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if _, err := container.Resources().Dashboard.Summary(ctx); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if n := fake.Requests("GET", "/api/v3/admin/dashboard/summary"); n != 2 {
		t.Errorf("expected summary to be fetched again after logout, got %d requests", n)
	}
}
