package query

import (
	"context"
	"sync"
	"time"
)

// Status is the lifecycle state of a cached read.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FetchFunc loads the value for a key from the source of truth.
type FetchFunc func(ctx context.Context) (any, error)

// Listener receives every state change of an observed entry.
type Listener func(Snapshot)

// Snapshot is a copy of an entry's state. Data keeps the last successful value
// even when Status is StatusError.
type Snapshot struct {
	Key         string
	Status      Status
	Data        any
	Err         error
	FetchedAt   time.Time
	ErrorAt     time.Time
	Stale       bool
	Fetching    bool
	Subscribers int
}

// HasData reports whether a successful value was ever stored.
func (s Snapshot) HasData() bool {
	return !s.FetchedAt.IsZero()
}

type entry struct {
	mu sync.Mutex

	key       string
	status    Status
	data      any
	err       error
	fetchedAt time.Time
	errorAt   time.Time
	stale     bool

	fetching bool
	seq      uint64 // flight currently allowed to settle
	settled  uint64 // last flight that settled, its store key can be dropped
	fn       FetchFunc

	subs    map[uint64]Listener
	nextSub uint64

	idleToken uint64
	removed   bool
}

func newEntry(key string) *entry {
	return &entry{
		key:    key,
		status: StatusIdle,
		subs:   make(map[uint64]Listener),
	}
}

// snapshotLocked must be called with e.mu held.
func (e *entry) snapshotLocked() Snapshot {
	return Snapshot{
		Key:         e.key,
		Status:      e.status,
		Data:        e.data,
		Err:         e.err,
		FetchedAt:   e.fetchedAt,
		ErrorAt:     e.errorAt,
		Stale:       e.stale,
		Fetching:    e.fetching,
		Subscribers: len(e.subs),
	}
}

// listenersLocked must be called with e.mu held.
func (e *entry) listenersLocked() []Listener {
	if len(e.subs) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(e.subs))
	for _, l := range e.subs {
		out = append(out, l)
	}
	return out
}

// resetLocked drops data and state, used when the entity behind the key is gone.
func (e *entry) resetLocked() {
	e.status = StatusIdle
	e.data = nil
	e.err = nil
	e.fetchedAt = time.Time{}
	e.errorAt = time.Time{}
	e.stale = true
	e.fetching = false
}

// abandonLocked stops waiting on the flight in progress.
// Must be called with e.mu held.
func (e *entry) abandonLocked() {
	e.fetching = false
	if e.status != StatusLoading {
		return
	}
	switch {
	case e.err != nil:
		e.status = StatusError
	case !e.fetchedAt.IsZero():
		e.status = StatusSuccess
	default:
		e.status = StatusIdle
	}
}

func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}
