package auth

import "strings"

const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
)

// Decision is the outcome of a gate check. Redirect is set when Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// StateReader exposes the current gate state.
type StateReader interface {
	State() State
}

// Gate decides route access from the auth state alone.
type Gate struct {
	state  StateReader
	public map[string]bool
}

// NewGate creates a gate where "/", "/login" and "/register" are public-only
// and every other path is protected.
func NewGate(state StateReader) *Gate {
	return &Gate{
		state: state,
		public: map[string]bool{
			"/":          true,
			LoginPath:    true,
			RegisterPath: true,
		},
	}
}

// Check decides whether path may be shown.
func (g *Gate) Check(path string) Decision {
	authenticated := g.state.State() == StateAuthenticated

	if g.isPublic(path) {
		if authenticated {
			return Decision{Redirect: DashboardPath}
		}
		return Decision{Allow: true}
	}

	if !authenticated {
		return Decision{Redirect: LoginPath}
	}
	return Decision{Allow: true}
}

func (g *Gate) isPublic(path string) bool {
	if path == "" {
		return true
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return g.public[path]
}
