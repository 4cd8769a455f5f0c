// Package session owns session existence and client membership.
package session

import (
	"sort"
	"sync"
	"time"
)

// DefaultSessionID is the well-known session every client may join without
// prior coordination.
const DefaultSessionID = "default"

// Summary describes one session for listing purposes.
type Summary struct {
	ID          string
	ClientCount int
	CreatedAt   time.Time
	Default     bool
}

type sessionRecord struct {
	createdAt time.Time
	clients   map[string]struct{}
}

// Registry is the in-memory owner of session membership state. Sessions are
// created lazily on first client registration and never deleted.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*sessionRecord
	clock    func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) { r.clock = clock }
}

// NewRegistry creates a registry with the default session pre-created.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*sessionRecord),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.EnsureDefaultSession()
	return r
}

// EnsureDefaultSession guarantees the default session exists. Idempotent.
func (r *Registry) EnsureDefaultSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(DefaultSessionID)
}

func (r *Registry) ensureLocked(sessionID string) *sessionRecord {
	rec, ok := r.sessions[sessionID]
	if !ok {
		rec = &sessionRecord{
			createdAt: r.clock(),
			clients:   make(map[string]struct{}),
		}
		r.sessions[sessionID] = rec
	}
	return rec
}

// AddClient adds a client to a session, creating the session if absent.
// Returns true if this was the client's first registration in that session.
func (r *Registry) AddClient(sessionID, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(DefaultSessionID)
	rec := r.ensureLocked(sessionID)
	_, exists := rec.clients[clientID]
	rec.clients[clientID] = struct{}{}
	return !exists
}

// IsMember reports whether the client has registered in the session.
func (r *Registry) IsMember(sessionID, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	_, member := rec.clients[clientID]
	return member
}

// MembersOf returns a snapshot copy of the session's client ids.
func (r *Registry) MembersOf(sessionID string) map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]struct{})
	if rec, ok := r.sessions[sessionID]; ok {
		for id := range rec.clients {
			out[id] = struct{}{}
		}
	}
	return out
}

// ListSessions returns summaries for every session, ordered by creation time
// with the id as a tie-breaker.
func (r *Registry) ListSessions() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Summary, 0, len(r.sessions))
	for id, rec := range r.sessions {
		out = append(out, Summary{
			ID:          id,
			ClientCount: len(rec.clients),
			CreatedAt:   rec.createdAt,
			Default:     id == DefaultSessionID,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
