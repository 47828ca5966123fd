package api

import (
	"context"
	"net/http"

	"github.com/goliatone/go-hostel-admin/transport"
)

// HostelsClient adds the assignment actions to hostel CRUD.
type HostelsClient struct {
	*Resource[Hostel, HostelRequest, HostelRequest]
}

func newHostelsClient(doer Doer) *HostelsClient {
	return &HostelsClient{
		Resource: NewResource[Hostel, HostelRequest, HostelRequest]("hostels", doer, Paths{
			Read:  "/api/v2/crm/admin/hostels/",
			Write: "/api/v3/admin/hostels/",
		}),
	}
}

// Assign places one member, in a specific hostel when HostelID is set.
func (c *HostelsClient) Assign(ctx context.Context, req AssignHostelRequest) error {
	if err := validatePayload("hostel assignment", req); err != nil {
		return err
	}
	return c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.paths.Write + "assign",
		Body:   req,
	}, nil)
}

// AssignAll asks the server to place every unassigned applicant.
func (c *HostelsClient) AssignAll(ctx context.Context) (AssignAllResponse, error) {
	var out AssignAllResponse
	err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.paths.Write + "assign-all",
	}, &out)
	return out, err
}

// ManualAssign places the given members in one hostel.
func (c *HostelsClient) ManualAssign(ctx context.Context, req ManualAssignRequest) error {
	if err := validatePayload("manual assignment", req); err != nil {
		return err
	}
	return c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.paths.Write + "manual-assign",
		Body:   req,
	}, nil)
}
