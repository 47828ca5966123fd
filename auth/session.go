package auth

import (
	"github.com/goccy/go-json"
)

// StorageKey is the durable key the session is persisted under.
const StorageKey = "auth-storage"

// State is the gate state derived from the session.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// User is the signed-in administrator.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Gender  string `json:"gender,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Session is the process-wide authentication state. IsAuthenticated is true
// exactly when Token is set.
type Session struct {
	IsAuthenticated bool
	User            *User
	Token           string
}

// State returns the gate state of s.
func (s Session) State() State {
	if s.IsAuthenticated {
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s Session) normalized() Session {
	s.IsAuthenticated = s.Token != ""
	if !s.IsAuthenticated {
		s.User = nil
	}
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// persisted is the stored shape: {"isAuthenticated", "user", "token"} with a
// null token when signed out.
type persisted struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *User   `json:"user"`
	Token           *string `json:"token"`
}

// MarshalJSON encodes the persisted shape.
func (s Session) MarshalJSON() ([]byte, error) {
	p := persisted{IsAuthenticated: s.IsAuthenticated, User: s.User}
	if s.Token != "" {
		token := s.Token
		p.Token = &token
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes the persisted shape and normalizes it.
func (s *Session) UnmarshalJSON(data []byte) error {
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	restored := Session{IsAuthenticated: p.IsAuthenticated, User: p.User}
	if p.Token != nil {
		restored.Token = *p.Token
	}
	*s = restored.normalized()
	return nil
}
