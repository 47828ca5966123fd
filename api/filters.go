package api

import (
	"net/url"
	"strconv"
)

// ApplicantFilters narrows the applicant list. Empty fields mean no filter and
// are left out of both the query string and the cache key.
type ApplicantFilters struct {
	SearchTerm string `json:"searchTerm,omitempty"`
	Gender     string `json:"gender,omitempty" validate:"omitempty,oneof=male female all"`
	ZoneID     ID     `json:"zoneId,omitempty"`
	State      string `json:"state,omitempty"`
}

// Values encodes the filters as query parameters.
func (f ApplicantFilters) Values() url.Values {
	v := url.Values{}
	setString(v, "searchTerm", f.SearchTerm)
	setString(v, "gender", f.Gender)
	setString(v, "zoneId", f.ZoneID.String())
	setString(v, "state", f.State)
	return v
}

// ProgramListParams narrows the program list.
type ProgramListParams struct {
	Name   string `json:"name,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0"`
	Offset int    `json:"offset,omitempty" validate:"gte=0"`
	Mine   bool   `json:"mine,omitempty"`
}

// Values encodes the params; zero values are omitted.
func (p ProgramListParams) Values() url.Values {
	v := url.Values{}
	setString(v, "name", p.Name)
	setInt(v, "limit", p.Limit)
	setInt(v, "offset", p.Offset)
	if p.Mine {
		v.Set("mine", "true")
	}
	return v
}

// PageParams is a plain limit/offset window.
type PageParams struct {
	Limit  int `json:"limit,omitempty" validate:"gte=0"`
	Offset int `json:"offset,omitempty" validate:"gte=0"`
}

// Values encodes the window. Offset 0 is sent when a limit is set.
func (p PageParams) Values() url.Values {
	v := url.Values{}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}
