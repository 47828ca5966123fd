package allocation

import (
	"strings"

	"github.com/goliatone/go-hostel-admin/api"
)

// DefaultZoneCapacity is the nominal number of participants per zone.
const DefaultZoneCapacity = 500

// UnassignedApplicants keeps applicants without a hostel. The API cannot
// filter on assignment, so this runs on the fetched list.
func UnassignedApplicants(applicants []api.Applicant) []api.Applicant {
	out := make([]api.Applicant, 0, len(applicants))
	for _, a := range applicants {
		if !a.HostelAssigned {
			out = append(out, a)
		}
	}
	return out
}

// HostelsForGender keeps hostels that accept gender. Filter "all" keeps
// every hostel, and mixed hostels match every filter.
func HostelsForGender(hostels []api.Hostel, gender string) []api.Hostel {
	out := make([]api.Hostel, 0, len(hostels))
	for _, h := range hostels {
		if gender == "" || strings.EqualFold(gender, api.GenderAll) ||
			strings.EqualFold(h.Gender, gender) || h.Gender == api.GenderAll {
			out = append(out, h)
		}
	}
	return out
}

// FilterRegistrations keeps registrations whose name, email or program name
// contains search, ignoring case, and whose program is for programType.
// An empty search or the type "ALL" does not filter.
func FilterRegistrations(regs []api.Registration, search, programType string) []api.Registration {
	term := strings.ToLower(strings.TrimSpace(search))
	anyType := programType == "" || strings.EqualFold(programType, "ALL")

	out := make([]api.Registration, 0, len(regs))
	for _, r := range regs {
		if !anyType && !strings.EqualFold(r.Program.For, programType) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Email), term) &&
			!strings.Contains(strings.ToLower(r.Program.Name), term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ZoneLoad is how many applicants come from one zone.
type ZoneLoad struct {
	Zone    api.Zone
	Used    int
	Max     int
	Percent float64
}

// ZoneOccupancy counts applicants per zone by zone name. A capacity of zero uses
// DefaultZoneCapacity.
func ZoneOccupancy(applicants []api.Applicant, zones []api.Zone, capacity int) []ZoneLoad {
	if capacity <= 0 {
		capacity = DefaultZoneCapacity
	}

	counts := make(map[string]int, len(zones))
	for _, a := range applicants {
		counts[a.Zone]++
	}

	out := make([]ZoneLoad, 0, len(zones))
	for _, z := range zones {
		used := counts[z.Name]
		out = append(out, ZoneLoad{
			Zone:    z,
			Used:    used,
			Max:     capacity,
			Percent: float64(used) / float64(capacity) * 100,
		})
	}
	return out
}
