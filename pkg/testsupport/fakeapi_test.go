package testsupport

import (
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-hostel-admin/api"
)

type fakeClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *fakeClient) do(method, path, body string, out any) int {
	c.t.Helper()

	req, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func login(t *testing.T, f *FakeAPI) *fakeClient {
	t.Helper()
	c := &fakeClient{t: t, base: f.URL}

	var auth api.AuthResponse
	if status := c.do("POST", "/api/v3/admin/auth/login", `{"email":"admin@example.org","password":"secret"}`, &auth); status != 200 {
		t.Fatalf("expected login to succeed, got %d", status)
	}
	c.token = auth.Token
	return c
}

func TestFakeAPI_RequiresToken(t *testing.T) {
	f := NewFakeAPI(t, DefaultSeed())
	anon := &fakeClient{t: t, base: f.URL}

	if status := anon.do("GET", "/api/v3/admin/zones/", "", nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", status)
	}
	if status := anon.do("POST", "/api/v3/admin/auth/login", `{"email":"admin@example.org","password":"wrong"}`, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", status)
	}

	c := login(t, f)
	if status := c.do("GET", "/api/v3/admin/zones/", "", nil); status != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", status)
	}

	f.RevokeTokens()
	if status := c.do("GET", "/api/v3/admin/zones/", "", nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after revoke, got %d", status)
	}
}

func TestFakeAPI_ZoneLifecycle(t *testing.T) {
	f := NewFakeAPI(t, DefaultSeed())
	c := login(t, f)

	var created api.Zone
	if status := c.do("POST", "/api/v2/crm/admin/zones/", `{"name":"East Zone","description":"new","isActive":1}`, &created); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.ID.IsZero() || created.Name != "East Zone" {
		t.Fatalf("expected created zone with id, got %+v", created)
	}

	var updated api.Zone
	c.do("PUT", "/api/v2/crm/admin/zones/"+created.ID.String(), `{"description":"edited"}`, &updated)
	if updated.Description != "edited" || updated.Name != "East Zone" {
		t.Errorf("expected partial update, got %+v", updated)
	}

	if status := c.do("DELETE", "/api/v2/crm/admin/zones/"+created.ID.String(), "", nil); status != http.StatusNoContent {
		t.Errorf("expected 204, got %d", status)
	}
	if status := c.do("GET", "/api/v3/admin/zones/"+created.ID.String(), "", nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestFakeAPI_ManualAssignUpdatesCapacity(t *testing.T) {
	f := NewFakeAPI(t, DefaultSeed())
	c := login(t, f)

	if status := c.do("POST", "/api/v3/admin/hostels/manual-assign", `{"memberIds":[11,12],"hostelId":1}`, nil); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	hostel, _ := f.Hostel("1")
	if hostel.RemainingCapacity != 3 {
		t.Errorf("expected 3 spots left, got %d", hostel.RemainingCapacity)
	}
	applicant, _ := f.Applicant("11")
	if !applicant.HostelAssigned || applicant.HostelName == nil || *applicant.HostelName != "Grace Hall" {
		t.Errorf("expected applicant placed in Grace Hall, got %+v", applicant)
	}

	if status := c.do("POST", "/api/v3/admin/hostels/manual-assign", `{"memberIds":[11,12,13,14],"hostelId":1}`, nil); status != http.StatusBadRequest {
		t.Errorf("expected over-capacity rejection, got %d", status)
	}
}

func TestFakeAPI_FailNextAndRequests(t *testing.T) {
	f := NewFakeAPI(t, DefaultSeed())
	c := login(t, f)

	f.FailNext("GET", "/api/v3/admin/dashboard/summary", http.StatusServiceUnavailable, "maintenance")
	if status := c.do("GET", "/api/v3/admin/dashboard/summary", "", nil); status != http.StatusServiceUnavailable {
		t.Errorf("expected injected failure, got %d", status)
	}

	var summary api.DashboardSummary
	if status := c.do("GET", "/api/v3/admin/dashboard/summary", "", &summary); status != http.StatusOK {
		t.Fatalf("expected recovery, got %d", status)
	}
	if summary.TotalUsers != 3 || summary.AssignedUsers != 1 || summary.TotalHostels != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}

	var genders []api.GenderDistributionEntry
	c.do("GET", "/api/v3/admin/dashboard/gender-distribution", "", &genders)
	CompareJSONWithGolden(t, GoldenPath("gender_distribution.json"), genders)

	if n := f.Requests("GET", "/api/v3/admin/dashboard/summary"); n != 2 {
		t.Errorf("expected 2 recorded requests, got %d", n)
	}
}

func TestFakeAPI_ProgramsPaged(t *testing.T) {
	seed := DefaultSeed()
	for i := 0; i < 5; i++ {
		seed.Programs = append(seed.Programs, api.Program{ID: api.IntID(int64(100 + i)), Name: "Camp", For: "CRM"})
	}
	f := NewFakeAPI(t, seed)
	c := login(t, f)

	var page api.Page[api.Program]
	c.do("GET", "/api/v2/programs/admin/crm?limit=2&offset=4", "", &page)
	if len(page.Data) != 1 || page.Pagination.Total != 5 || page.Pagination.HasMore {
		t.Errorf("expected last page of one, got %+v", page)
	}
}
