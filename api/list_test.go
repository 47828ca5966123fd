package api

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestList_AcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"bare array", `[{"id":1,"name":"North"},{"id":2,"name":"South"}]`, 2},
		{"wrapped", `{"data":[{"id":1,"name":"North"}]}`, 1},
		{"wrapped empty", `{"data":null}`, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var zones List[Zone]
			if err := json.Unmarshal([]byte(tt.in), &zones); err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if len(zones) != tt.want {
				t.Errorf("expected %d zones, got %d", tt.want, len(zones))
			}
			if zones == nil {
				t.Error("expected non-nil list")
			}
		})
	}
}

func TestPage_Decodes(t *testing.T) {
	in := `{"data":[{"id":9,"name":"Camp","for":"CRM"}],"pagination":{"total":21,"limit":10,"offset":10,"hasMore":true}}`
	var page Page[Program]
	if err := json.Unmarshal([]byte(in), &page); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != "9" {
		t.Errorf("unexpected data %+v", page.Data)
	}
	if page.Pagination.Total != 21 || !page.Pagination.HasMore {
		t.Errorf("unexpected pagination %+v", page.Pagination)
	}
}

func TestFilters_Values(t *testing.T) {
	v := ApplicantFilters{Gender: "male", SearchTerm: ""}.Values()
	if v.Encode() != "gender=male" {
		t.Errorf("expected only gender, got %s", v.Encode())
	}

	p := ProgramListParams{Name: "camp", Limit: 10, Mine: true}.Values()
	if p.Encode() != "limit=10&mine=true&name=camp" {
		t.Errorf("unexpected program params %s", p.Encode())
	}

	if got := (PageParams{Limit: 10}).Values().Encode(); got != "limit=10&offset=0" {
		t.Errorf("unexpected page params %s", got)
	}
	if got := (PageParams{}).Values().Encode(); got != "" {
		t.Errorf("expected empty page params, got %s", got)
	}
}
