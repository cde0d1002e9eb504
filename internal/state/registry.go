package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/job-search-service/internal/events"
	"github.com/spec-kit/job-search-service/internal/repository"
)

type entry struct {
	state     *AppState
	createdAt time.Time
}

// Registry owns one AppState per HTTP session.
type Registry struct {
	repo       repository.JobBoardRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]entry
}

// NewRegistry builds an empty registry. Sessions older than ttl are treated as gone.
func NewRegistry(repo repository.JobBoardRepository, dispatcher events.Dispatcher, logger *zap.Logger, ttl time.Duration) *Registry {
	return &Registry{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		ttl:        ttl,
		now:        time.Now,
		sessions:   make(map[string]entry),
	}
}

// Open creates and starts a new session.
func (r *Registry) Open(ctx context.Context) *AppState {
	st := NewAppState(uuid.NewString(), r.repo, r.dispatcher, r.logger)
	st.Start(ctx)

	r.mu.Lock()
	r.sessions[st.ID()] = entry{state: st, createdAt: r.now()}
	r.mu.Unlock()
	return st
}

// Get returns a live session.
func (r *Registry) Get(id string) (*AppState, bool) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || r.expired(e) {
		return nil, false
	}
	return e.state, true
}

// Active reports whether the session exists and has a logged-in user.
func (r *Registry) Active(id string) bool {
	st, ok := r.Get(id)
	if !ok {
		return false
	}
	_, loggedIn := st.CurrentUser()
	return loggedIn
}

// Role returns the current role of the session's user.
func (r *Registry) Role(id string) (string, bool) {
	st, ok := r.Get(id)
	if !ok {
		return "", false
	}
	u, ok := st.CurrentUser()
	if !ok {
		return "", false
	}
	return u.Role, true
}

// Close logs the session out and forgets it.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.state.Logout()
	}
}

// CloseUser closes every session logged in as userID.
func (r *Registry) CloseUser(userID string) int {
	r.mu.RLock()
	var ids []string
	for id, e := range r.sessions {
		if u, ok := e.state.CurrentUser(); ok && u.ID == userID {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Close(id)
	}
	return len(ids)
}

// Sweep drops expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	var stale []*AppState
	for id, e := range r.sessions {
		if r.expired(e) {
			stale = append(stale, e.state)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, st := range stale {
		st.Logout()
	}
	if len(stale) > 0 {
		r.logger.Debug("swept expired sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) expired(e entry) bool {
	return r.ttl > 0 && r.now().Sub(e.createdAt) > r.ttl
}
