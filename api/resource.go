package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/internal/validation"
	"github.com/goliatone/go-hostel-admin/transport"
)

// Doer is the transport contract the resource clients need.
type Doer interface {
	Do(ctx context.Context, req transport.Request, out any) error
	Send(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Paths locates a resource. Reads and writes may live under different API
// versions. Collection paths end with a slash.
type Paths struct {
	Read  string
	Write string
}

func (p Paths) readItem(id ID) string  { return item(p.Read, id) }
func (p Paths) writeItem(id ID) string { return item(p.Write, id) }

func item(base string, id ID) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(id.String())
}

// Resource is a CRUD client for one entity. T is the record, C the create
// payload and U the update payload.
type Resource[T, C, U any] struct {
	name  string
	doer  Doer
	paths Paths
}

// NewResource creates a CRUD client.
func NewResource[T, C, U any](name string, doer Doer, paths Paths) *Resource[T, C, U] {
	return &Resource[T, C, U]{name: name, doer: doer, paths: paths}
}

// Name returns the resource name.
func (r *Resource[T, C, U]) Name() string { return r.name }

// List fetches every record.
func (r *Resource[T, C, U]) List(ctx context.Context) ([]T, error) {
	var out List[T]
	if err := r.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: r.paths.Read}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one record.
func (r *Resource[T, C, U]) Get(ctx context.Context, id ID) (T, error) {
	var out T
	if err := requireID(r.name, id); err != nil {
		return out, err
	}
	err := r.doer.Do(ctx, transport.Request{Method: http.MethodGet, Path: r.paths.readItem(id)}, &out)
	return out, err
}

// Create validates and sends payload.
func (r *Resource[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	var out T
	if err := validatePayload(r.name, payload); err != nil {
		return out, err
	}
	err := r.doer.Do(ctx, transport.Request{Method: http.MethodPost, Path: r.paths.Write, Body: payload}, &out)
	return out, err
}

// Update validates and sends payload for id.
func (r *Resource[T, C, U]) Update(ctx context.Context, id ID, payload U) (T, error) {
	var out T
	if err := requireID(r.name, id); err != nil {
		return out, err
	}
	if err := validatePayload(r.name, payload); err != nil {
		return out, err
	}
	err := r.doer.Do(ctx, transport.Request{Method: http.MethodPut, Path: r.paths.writeItem(id), Body: payload}, &out)
	return out, err
}

// Delete removes id.
func (r *Resource[T, C, U]) Delete(ctx context.Context, id ID) error {
	if err := requireID(r.name, id); err != nil {
		return err
	}
	return r.doer.Do(ctx, transport.Request{Method: http.MethodDelete, Path: r.paths.writeItem(id)}, nil)
}

func validatePayload(resource string, payload any) error {
	return validation.Struct(payload, "invalid "+resource+" payload")
}

func requireID(resource string, id ID) error {
	if !id.IsZero() {
		return nil
	}
	return errors.NewValidation("invalid "+resource+" id", errors.FieldError{
		Field:   "id",
		Message: "is required",
	}).WithTextCode(validation.TextCode)
}
