package api

import (
	"context"
	"net/http"

	"github.com/goliatone/go-hostel-admin/transport"
)

const authPath = "/api/v3/admin/auth/"

// AuthClient performs login and registration.
type AuthClient struct {
	doer Doer
}

func (c *AuthClient) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	return c.post(ctx, "login", req)
}

func (c *AuthClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	return c.post(ctx, "register", req)
}

func (c *AuthClient) post(ctx context.Context, action string, req any) (AuthResponse, error) {
	var out AuthResponse
	if err := validatePayload(action, req); err != nil {
		return out, err
	}
	err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   authPath + action,
		Body:   req,
	}, &out)
	return out, err
}
