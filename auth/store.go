package auth

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/rs/zerolog"
)

// TextCodeSessionDecode marks persisted session data that could not be read.
const TextCodeSessionDecode = "SESSION_DECODE_ERROR"

// Listener receives the session after every transition.
type Listener func(Session)

// Store owns the session. Transitions update memory first, then persist; a
// failed write is reported but the transition still holds.
type Store struct {
	mu        sync.RWMutex
	session   Session
	storage   Storage
	listeners map[uint64]Listener
	nextID    uint64
	logger    zerolog.Logger
}

// NewStore creates an anonymous store backed by storage. Call Load to restore
// a persisted session.
func NewStore(storage Storage) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{
		storage:   storage,
		listeners: make(map[uint64]Listener),
		logger:    logging.WithComponent("auth"),
	}
}

// Load restores the persisted session. Unreadable data leaves the store
// anonymous.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var restored Session
	if err := json.Unmarshal(data, &restored); err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable session")
		return errors.Wrap(err, errors.CategoryInternal, "decode persisted session").
			WithTextCode(TextCodeSessionDecode)
	}

	s.mu.Lock()
	s.session = restored.normalized()
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return nil
}

// SetAuth signs in user with token. An empty token signs out.
func (s *Store) SetAuth(ctx context.Context, user *User, token string) error {
	return s.transition(ctx, Session{User: user, Token: token}, "signed in")
}

// Logout signs out explicitly.
func (s *Store) Logout(ctx context.Context) error {
	return s.transition(ctx, Session{}, "signed out")
}

// ClearAuth signs out after the server rejected the credential.
func (s *Store) ClearAuth(ctx context.Context) error {
	return s.transition(ctx, Session{}, "session cleared")
}

func (s *Store) transition(ctx context.Context, next Session, msg string) error {
	s.mu.Lock()
	s.session = next.normalized()
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	logging.Ctx(ctx).Debug().Str("component", "auth").Str("state", string(snap.State())).Msg(msg)
	notify(listeners, snap)

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "encode session")
	}
	if err := s.storage.Save(ctx, data); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist session")
		return err
	}
	return nil
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// State returns the gate state.
func (s *Store) State() State {
	return s.Session().State()
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

// Token returns the bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// User returns the signed-in user, nil when signed out.
func (s *Store) User() *User {
	return s.Session().User
}

// Subscribe registers fn for every transition and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}

func (s *Store) snapshotLocked() Session {
	return s.session.normalized()
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, s Session) {
	for _, l := range listeners {
		l(s)
	}
}
