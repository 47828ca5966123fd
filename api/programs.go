package api

import (
	"context"
	"net/http"

	"github.com/goliatone/go-hostel-admin/transport"
)

const (
	programsPath      = "/api/v2/programs/admin/"
	programsCRMPath   = "/api/v2/programs/admin/crm"
	registrationsPath = "/api/v2/programs/admin/registrations/registrations/"
)

// ProgramsClient manages CRM programs. The list is paged.
type ProgramsClient struct {
	*Resource[Program, CreateProgramRequest, UpdateProgramRequest]
}

func newProgramsClient(doer Doer) *ProgramsClient {
	return &ProgramsClient{
		Resource: NewResource[Program, CreateProgramRequest, UpdateProgramRequest]("programs", doer, Paths{
			Read:  programsPath,
			Write: programsPath,
		}),
	}
}

// List fetches one page of programs.
func (c *ProgramsClient) List(ctx context.Context, params ProgramListParams) (Page[Program], error) {
	var out Page[Program]
	if err := validatePayload("program list params", params); err != nil {
		return out, err
	}
	err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   programsCRMPath,
		Query:  params.Values(),
	}, &out)
	return out, err
}

// Create adds a CRM program.
func (c *ProgramsClient) Create(ctx context.Context, payload CreateProgramRequest) (Program, error) {
	var out Program
	if err := validatePayload("programs", payload); err != nil {
		return out, err
	}
	err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   programsCRMPath,
		Body:   payload,
	}, &out)
	return out, err
}

// RegistrationsClient reads and deletes program registrations.
type RegistrationsClient struct {
	doer Doer
}

// List fetches one page of CRM registrations.
func (c *RegistrationsClient) List(ctx context.Context, params PageParams) (Page[Registration], error) {
	var out Page[Registration]
	if err := validatePayload("registration page params", params); err != nil {
		return out, err
	}
	err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   registrationsPath + "crm",
		Query:  params.Values(),
	}, &out)
	return out, err
}

// Delete removes a registration.
func (c *RegistrationsClient) Delete(ctx context.Context, id ID) error {
	if err := requireID("registration", id); err != nil {
		return err
	}
	return c.doer.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   item(registrationsPath, id),
	}, nil)
}
