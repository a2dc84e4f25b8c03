// Package session holds ephemeral QR attendance sessions in memory.
// Sessions are bounded to a single class period and deliberately do not
// survive a process restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when a session was stopped or its TTL elapsed.
	ErrExpired = errors.New("session expired")
)

// Session is one live attendance-taking window for a subject.
type Session struct {
	ID        string
	Subject   string
	TeacherID string
	CreatedAt time.Time
	Active    bool
}

// Registry is a concurrency-safe keyed store of QR sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions expire after ttl.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a fresh session token. UUIDv4 makes collisions negligible.
func (r *Registry) Create(subject, teacherID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &Session{
		ID:        uuid.NewString(),
		Subject:   subject,
		TeacherID: teacherID,
		CreatedAt: r.now(),
		Active:    true,
	}
	r.sessions[s.ID] = s
	return *s
}

// Stop deactivates a session. Stopping an already-stopped session is allowed.
func (r *Registry) Stop(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.Active = false
	return nil
}

// Validate returns the session if it is still live. Callable without
// authentication: it is the public liveness probe scanned clients use.
func (r *Registry) Validate(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !r.live(s) {
		return Session{}, ErrExpired
	}
	return *s, nil
}

// CurrentActive returns the most recently created live session, if any.
func (r *Registry) CurrentActive() (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *Session
	for _, s := range r.sessions {
		if !r.live(s) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return Session{}, false
	}
	return *best, true
}

func (r *Registry) live(s *Session) bool {
	return s.Active && r.now().Sub(s.CreatedAt) <= r.ttl
}
