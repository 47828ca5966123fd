package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// TextCodeMissingToken marks an auth response that carried no token.
const TextCodeMissingToken = "MISSING_TOKEN"

// AuthAPI is the server side of login and registration.
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
}

// Clearer drops cached server data on sign out.
type Clearer interface {
	Clear(ctx context.Context)
}

// Service signs administrators in and out.
type Service struct {
	api      AuthAPI
	store    *Store
	clearers []Clearer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClearer registers c to be cleared on logout.
func WithClearer(c Clearer) ServiceOption {
	return func(s *Service) { s.clearers = append(s.clearers, c) }
}

func NewService(authAPI AuthAPI, store *Store, opts ...ServiceOption) *Service {
	s := &Service{api: authAPI, store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the session store.
func (s *Service) Store() *Store {
	return s.store
}

// Login authenticates and stores the session. The store is untouched on
// failure.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, resp, email)
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, req api.RegisterRequest) (*User, error) {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.accept(ctx, resp, req.Email)
}

// Logout clears the session and every registered cache.
func (s *Service) Logout(ctx context.Context) error {
	err := s.store.Logout(ctx)
	for _, c := range s.clearers {
		c.Clear(ctx)
	}
	return err
}

func (s *Service) accept(ctx context.Context, resp api.AuthResponse, email string) (*User, error) {
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "authentication response did not include a token"
		}
		return nil, errors.New(msg, errors.CategoryAuth).WithTextCode(TextCodeMissingToken)
	}

	var user *User
	if resp.User != nil {
		user = fromAPIUser(resp.User)
	} else {
		user = userFromToken(resp.Token)
	}
	if user.Email == "" {
		user.Email = email
	}

	if err := s.store.SetAuth(ctx, user, resp.Token); err != nil {
		// The session is live in memory; only persistence failed.
		logging.Ctx(ctx).Warn().Err(err).Str("component", "auth").Msg("session not persisted")
	}
	return user, nil
}

func fromAPIUser(u *api.AuthUser) *User {
	return &User{
		ID:      u.ID.String(),
		Email:   u.Email,
		Name:    u.Name,
		Gender:  u.Gender,
		IsAdmin: u.IsAdmin,
		Role:    u.Role,
	}
}

// userFromToken reads identity claims without verifying the signature; the
// server verifies the token on every request.
func userFromToken(token string) *User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return &User{}
	}

	u := &User{
		ID:    firstClaim(claims, "sub", "id", "userId"),
		Email: firstClaim(claims, "email"),
		Name:  firstClaim(claims, "name"),
		Role:  firstClaim(claims, "role"),
	}
	switch v := claims["isAdmin"].(type) {
	case bool:
		u.IsAdmin = v
	case string:
		u.IsAdmin = strings.EqualFold(v, "true")
	}
	if !u.IsAdmin && strings.EqualFold(u.Role, "admin") {
		u.IsAdmin = true
	}
	return u
}

func firstClaim(claims jwt.MapClaims, names ...string) string {
	for _, name := range names {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return api.IntID(int64(v)).String()
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}
