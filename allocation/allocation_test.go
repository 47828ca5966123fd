package allocation

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/api"
)

type fakeHostels struct {
	mu       sync.Mutex
	cached   map[api.ID]api.Hostel
	remote   map[api.ID]api.Hostel
	gets     int
	assigned []api.ManualAssignRequest
	err      error
}

func (f *fakeHostels) Lookup(id api.ID) (api.Hostel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.cached[id]
	return h, ok
}

func (f *fakeHostels) Get(ctx context.Context, id api.ID) (api.Hostel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	h, ok := f.remote[id]
	if !ok {
		return api.Hostel{}, errors.New("hostel not found", errors.CategoryNotFound)
	}
	return h, nil
}

func (f *fakeHostels) ManualAssign(ctx context.Context, req api.ManualAssignRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned = append(f.assigned, req)
	return f.err
}

func ids(n int) []api.ID {
	out := make([]api.ID, n)
	for i := range out {
		out[i] = api.IntID(int64(i + 1))
	}
	return out
}

func TestCheckCapacity(t *testing.T) {
	tests := []struct {
		name      string
		selected  int
		remaining int
		wantErr   bool
		message   string
	}{
		{"fits", 3, 5, false, ""},
		{"exactly full", 5, 5, false, ""},
		{"one too many", 6, 5, true, "Not enough space. Only 5 spots available."},
		{"full hostel", 1, 0, true, "Not enough space. Only 0 spots available."},
		{"negative remaining", 1, -2, true, "Not enough space. Only 0 spots available."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCapacity(tt.selected, api.Hostel{ID: "h1", RemainingCapacity: tt.remaining})
			if !tt.wantErr {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}

			var e *errors.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T %v", err, err)
			}
			if e.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, e.Message)
			}
			if !errors.IsValidation(err) {
				t.Errorf("expected validation category, got %s", e.Category)
			}
			if !IsCapacityExceeded(err) {
				t.Error("expected capacity text code")
			}
			if e.Metadata["requested"] != tt.selected {
				t.Errorf("expected requested=%d in metadata, got %v", tt.selected, e.Metadata)
			}
		})
	}
}

func TestManualAssign_RejectsBeforeRequest(t *testing.T) {
	tests := []struct {
		name     string
		hostelID api.ID
		members  []api.ID
		message  string
	}{
		{"no members", "h1", nil, "Please select at least one user"},
		{"no hostel", "", ids(2), "Please select a hostel"},
		{"over capacity", "h1", ids(6), "Not enough space. Only 5 spots available."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hostels := &fakeHostels{cached: map[api.ID]api.Hostel{"h1": {ID: "h1", RemainingCapacity: 5}}}
			err := NewAssigner(hostels).ManualAssign(context.Background(), tt.hostelID, tt.members)

			var e *errors.Error
			if !errors.As(err, &e) || e.Message != tt.message {
				t.Errorf("expected %q, got %v", tt.message, err)
			}
			if len(hostels.assigned) != 0 {
				t.Errorf("expected no assignment request, got %v", hostels.assigned)
			}
		})
	}
}

func TestManualAssign_UsesCachedHostel(t *testing.T) {
	hostels := &fakeHostels{
		cached: map[api.ID]api.Hostel{"h1": {ID: "h1", RemainingCapacity: 5}},
		remote: map[api.ID]api.Hostel{"h1": {ID: "h1", RemainingCapacity: 0}},
	}

	if err := NewAssigner(hostels).ManualAssign(context.Background(), "h1", ids(5)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hostels.gets != 0 {
		t.Errorf("expected no fetch when cached, got %d", hostels.gets)
	}
	if len(hostels.assigned) != 1 || len(hostels.assigned[0].MemberIDs) != 5 || hostels.assigned[0].HostelID != "h1" {
		t.Errorf("expected one request for 5 members, got %+v", hostels.assigned)
	}
}

func TestManualAssign_FetchesUncachedHostel(t *testing.T) {
	hostels := &fakeHostels{remote: map[api.ID]api.Hostel{"h2": {ID: "h2", RemainingCapacity: 1}}}

	err := NewAssigner(hostels).ManualAssign(context.Background(), "h2", ids(2))
	if !IsCapacityExceeded(err) {
		t.Errorf("expected capacity error, got %v", err)
	}
	if hostels.gets != 1 {
		t.Errorf("expected one fetch, got %d", hostels.gets)
	}

	err = NewAssigner(hostels).ManualAssign(context.Background(), "missing", ids(1))
	if !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestManualAssign_ServerRejectionReturnedAsIs(t *testing.T) {
	rejection := errors.New("member already assigned", errors.CategoryConflict)
	hostels := &fakeHostels{
		cached: map[api.ID]api.Hostel{"h1": {ID: "h1", RemainingCapacity: 5}},
		err:    rejection,
	}

	err := NewAssigner(hostels).ManualAssign(context.Background(), "h1", ids(1))
	if !errors.Is(err, rejection) {
		t.Errorf("expected server rejection, got %v", err)
	}
}

func TestUnassignedApplicants(t *testing.T) {
	got := UnassignedApplicants([]api.Applicant{
		{ID: "1", HostelAssigned: true},
		{ID: "2"},
		{ID: "3"},
	})
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Errorf("expected applicants 2 and 3, got %+v", got)
	}
}

func TestHostelsForGender(t *testing.T) {
	hostels := []api.Hostel{
		{ID: "m", Gender: "male"},
		{ID: "f", Gender: "Female"},
		{ID: "a", Gender: "all"},
	}

	tests := []struct {
		filter string
		want   []api.ID
	}{
		{"all", []api.ID{"m", "f", "a"}},
		{"", []api.ID{"m", "f", "a"}},
		{"male", []api.ID{"m", "a"}},
		{"female", []api.ID{"f", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := HostelsForGender(hostels, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %+v", tt.want, got)
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("expected %s at %d, got %s", tt.want[i], i, got[i].ID)
				}
			}
		})
	}
}

func TestFilterRegistrations(t *testing.T) {
	regs := []api.Registration{
		{ID: "1", Name: "Ada Obi", Email: "ada@example.org", Program: api.RegistrationProgram{Name: "Youth Camp", For: "CRM"}},
		{ID: "2", Name: "Bola", Email: "bola@example.org", Program: api.RegistrationProgram{Name: "Retreat", For: "RCCG"}},
		{ID: "3", Name: "Chi", Email: "chi@camp.org", Program: api.RegistrationProgram{Name: "Retreat", For: "BOTH"}},
	}

	tests := []struct {
		name   string
		search string
		typ    string
		want   []api.ID
	}{
		{"no filter", "", "ALL", []api.ID{"1", "2", "3"}},
		{"name", "ADA", "", []api.ID{"1"}},
		{"email", "camp.org", "all", []api.ID{"3"}},
		{"program name", "camp", "ALL", []api.ID{"1", "3"}},
		{"type", "", "RCCG", []api.ID{"2"}},
		{"search and type", "retreat", "BOTH", []api.ID{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRegistrations(regs, tt.search, tt.typ)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %+v", tt.want, got)
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("expected %s at %d, got %s", tt.want[i], i, got[i].ID)
				}
			}
		})
	}
}

func TestZoneOccupancy(t *testing.T) {
	zones := []api.Zone{{ID: "1", Name: "North"}, {ID: "2", Name: "East"}}
	applicants := []api.Applicant{{Zone: "North"}, {Zone: "North"}, {Zone: "West"}}

	got := ZoneOccupancy(applicants, zones, 0)
	if len(got) != 2 {
		t.Fatalf("expected one load per zone, got %+v", got)
	}
	if got[0].Used != 2 || got[0].Max != DefaultZoneCapacity || math.Abs(got[0].Percent-0.4) > 1e-9 {
		t.Errorf("expected North 2/500 (0.4%%), got %+v", got[0])
	}
	if got[1].Used != 0 {
		t.Errorf("expected East empty, got %+v", got[1])
	}
}
