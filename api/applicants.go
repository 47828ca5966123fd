package api

import (
	"context"
	"net/http"

	"github.com/goliatone/go-hostel-admin/transport"
)

// ApplicantsClient reads the applicant pool.
type ApplicantsClient struct {
	doer Doer
}

const applicantsPath = "/api/v3/admin/users/"

// List fetches applicants matching filters.
func (c *ApplicantsClient) List(ctx context.Context, filters ApplicantFilters) ([]Applicant, error) {
	if err := validatePayload("applicant filters", filters); err != nil {
		return nil, err
	}
	var out List[Applicant]
	err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   applicantsPath,
		Query:  filters.Values(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CSV downloads the applicant export as returned by the server.
func (c *ApplicantsClient) CSV(ctx context.Context) ([]byte, error) {
	resp, err := c.doer.Send(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   applicantsPath + "csv",
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
