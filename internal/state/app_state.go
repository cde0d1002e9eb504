package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/events"
	"github.com/spec-kit/job-search-service/internal/repository"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// Phase is the load state of the cache.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
)

// Snapshot is a copy of the cache handed to readers and subscribers.
type Snapshot struct {
	Phase       Phase
	CurrentUser *domain.User
	Jobs        []domain.Job
	SavedJobs   []domain.SavedJobLink
	AppliedJobs []domain.AppliedJobLink
}

// Loading reports whether the job list is still being loaded.
func (s Snapshot) Loading() bool {
	return s.Phase != PhaseReady
}

// LoggedIn reports whether a user is set.
func (s Snapshot) LoggedIn() bool {
	return s.CurrentUser != nil
}

// AppState mirrors the job list and the current user's links for one session.
// Every mutation goes to the repository first and touches the mirror only on success.
type AppState struct {
	id         string
	repo       repository.JobBoardRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu          sync.RWMutex
	phase       Phase
	currentUser *domain.User
	jobs        []domain.Job
	saved       []domain.SavedJobLink
	applied     []domain.AppliedJobLink
	// bumped on every login/logout so late link loads for a previous user are dropped
	generation uint64

	loads sync.WaitGroup
}

// NewAppState builds an uninitialized cache. Call Start before use.
func NewAppState(id string, repo repository.JobBoardRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AppState {
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &AppState{
		id:         id,
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("session_id", id)),
		phase:      PhaseUninitialized,
		jobs:       []domain.Job{},
		saved:      []domain.SavedJobLink{},
		applied:    []domain.AppliedJobLink{},
	}
}

// ID returns the session identifier.
func (s *AppState) ID() string {
	return s.id
}

// Start seeds the store if needed and loads the job list. Failures are logged and the
// cache still ends up Ready, with an empty job list.
func (s *AppState) Start(ctx context.Context) {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.mu.Unlock()
	s.notify(ctx)

	jobs, err := s.loadJobs(ctx)
	if err != nil {
		s.logger.Error("initial load failed", zap.Error(err))
		jobs = []domain.Job{}
	}

	s.mu.Lock()
	s.jobs = jobs
	s.phase = PhaseReady
	s.mu.Unlock()
	s.notify(ctx)
}

func (s *AppState) loadJobs(ctx context.Context) ([]domain.Job, error) {
	if _, err := s.repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetJobs(ctx)
}

// Login sets the current user when the credentials match. The user's saved and applied
// links load in the background; use WaitUserData to wait for them.
func (s *AppState) Login(ctx context.Context, email, password string) (bool, error) {
	user, err := s.repo.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			return false, nil
		}
		return false, err
	}

	s.setCurrentUser(ctx, user)
	return true, nil
}

// Register creates the account and logs it in.
func (s *AppState) Register(ctx context.Context, input domain.NewUser) (bool, error) {
	user, err := s.repo.CreateUser(ctx, input)
	if err != nil {
		return false, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email:    user.Email,
		Username: user.Username,
	})
	s.setCurrentUser(ctx, user)
	return true, nil
}

func (s *AppState) setCurrentUser(ctx context.Context, user *domain.User) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.currentUser = user
	s.saved = []domain.SavedJobLink{}
	s.applied = []domain.AppliedJobLink{}
	s.loads.Add(1)
	s.mu.Unlock()

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	s.notify(ctx)

	go s.loadUserData(context.WithoutCancel(ctx), gen, user.ID)
}

func (s *AppState) loadUserData(ctx context.Context, gen uint64, userID string) {
	defer s.loads.Done()

	saved, err := s.repo.GetSavedJobs(ctx, userID)
	if err != nil {
		s.logger.Error("loading saved jobs failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	applied, err := s.repo.GetAppliedJobs(ctx, userID)
	if err != nil {
		s.logger.Error("loading applied jobs failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	// keep links added by SaveJob/ApplyForJob while the load was in flight
	s.saved = mergeLinks(saved, s.saved, savedKey)
	s.applied = mergeLinks(applied, s.applied, appliedKey)
	s.mu.Unlock()

	s.notify(ctx)
}

// WaitUserData blocks until background link loads finish or ctx is done.
func (s *AppState) WaitUserData(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.loads.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logout clears the current user and both link sets.
func (s *AppState) Logout() {
	s.mu.Lock()
	wasLoggedIn := s.currentUser != nil
	s.clearUserLocked()
	s.mu.Unlock()

	if wasLoggedIn {
		s.logger.Info("user logged out")
	}
	s.notify(context.Background())
}

func (s *AppState) clearUserLocked() {
	s.generation++
	s.currentUser = nil
	s.saved = []domain.SavedJobLink{}
	s.applied = []domain.AppliedJobLink{}
}

// SaveJob bookmarks a job. It reports false when the pair was already saved.
func (s *AppState) SaveJob(ctx context.Context, userID, jobID string) (bool, error) {
	inserted, err := s.repo.SaveJob(ctx, userID, jobID)
	if err != nil || !inserted {
		return inserted, err
	}

	link := domain.SavedJobLink{UserID: userID, JobID: jobID}
	if s.mirrorLink(userID, func() { s.saved = mergeLinks(s.saved, []domain.SavedJobLink{link}, savedKey) }) {
		s.notify(ctx)
	}
	s.publish(ctx, events.EventJobSaved, userID, events.JobLinkPayload{JobID: jobID})
	return true, nil
}

// ApplyForJob records a pending application. It reports false when one already exists.
func (s *AppState) ApplyForJob(ctx context.Context, userID, jobID string) (bool, error) {
	inserted, err := s.repo.ApplyForJob(ctx, userID, jobID)
	if err != nil || !inserted {
		return inserted, err
	}

	// the repository owns appliedAt, so re-read the user's links
	applied, err := s.repo.GetAppliedJobs(ctx, userID)
	if err != nil {
		s.logger.Error("refreshing applied jobs failed", zap.String("user_id", userID), zap.Error(err))
	} else if s.mirrorLink(userID, func() { s.applied = mergeLinks(applied, s.applied, appliedKey) }) {
		s.notify(ctx)
	}

	s.publish(ctx, events.EventJobApplied, userID, events.JobLinkPayload{JobID: jobID})
	return true, nil
}

// mirrorLink runs update under the lock when userID is the current user.
func (s *AppState) mirrorLink(userID string, update func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil || s.currentUser.ID != userID {
		return false
	}
	update()
	return true
}

// UpdateUser changes the password or merges profile fields, refreshing the current user.
func (s *AppState) UpdateUser(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	updated, err := s.repo.UpdateUser(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current := s.currentUser != nil && s.currentUser.ID == userID
	if current {
		u := *updated
		s.currentUser = &u
	}
	s.mu.Unlock()

	if current {
		s.notify(ctx)
	}
	return updated, nil
}

// DeleteUser removes the account and its links, logging out if it is the current user.
func (s *AppState) DeleteUser(ctx context.Context, userID, password string) error {
	if err := s.repo.DeleteUser(ctx, userID, password); err != nil {
		return err
	}

	s.mu.Lock()
	current := s.currentUser != nil && s.currentUser.ID == userID
	if current {
		s.clearUserLocked()
	}
	s.mu.Unlock()

	if current {
		s.notify(ctx)
	}
	s.publish(ctx, events.EventUserDeleted, userID, nil)
	return nil
}

// CurrentUser returns a copy of the logged-in user.
func (s *AppState) CurrentUser() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil, false
	}
	u := *s.currentUser
	return &u, true
}

// Snapshot copies the current cache contents.
func (s *AppState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *AppState) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:       s.phase,
		Jobs:        append([]domain.Job{}, s.jobs...),
		SavedJobs:   append([]domain.SavedJobLink{}, s.saved...),
		AppliedJobs: append([]domain.AppliedJobLink{}, s.applied...),
	}
	if s.currentUser != nil {
		u := *s.currentUser
		snap.CurrentUser = &u
	}
	return snap
}

// Subscribe calls fn with a fresh snapshot after every change to this session.
func (s *AppState) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.dispatcher.Subscribe(events.EventStateChanged, func(_ context.Context, e events.Event) error {
		if e.SessionID != s.id {
			return nil
		}
		if snap, ok := e.Payload.(Snapshot); ok {
			fn(snap)
		}
		return nil
	})
}

// SearchJobs filters the cached job list.
func (s *AppState) SearchJobs(filter repository.JobFilter) []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return repository.FilterJobs(s.jobs, filter)
}

// SavedJobDetails resolves the saved links against the cached job list, skipping
// links whose job no longer exists.
func (s *AppState) SavedJobDetails() []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]domain.Job, len(s.jobs))
	for _, j := range s.jobs {
		byID[j.ID] = j
	}
	out := make([]domain.Job, 0, len(s.saved))
	for _, l := range s.saved {
		if j, ok := byID[l.JobID]; ok {
			out = append(out, j)
		}
	}
	return out
}

// AppliedJobsByStatus returns the cached applications with the given status; an empty
// status returns all of them.
func (s *AppState) AppliedJobsByStatus(status domain.ApplicationStatus) []domain.AppliedJobLink {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AppliedJobLink, 0, len(s.applied))
	for _, l := range s.applied {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

func (s *AppState) notify(ctx context.Context) {
	s.mu.RLock()
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	var userID string
	if snap.CurrentUser != nil {
		userID = snap.CurrentUser.ID
	}
	s.publish(ctx, events.EventStateChanged, userID, snap)
}

func (s *AppState) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		SessionID: s.id,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func savedKey(l domain.SavedJobLink) string     { return l.JobID }
func appliedKey(l domain.AppliedJobLink) string { return l.JobID }

// mergeLinks returns base followed by the extra links whose key is not in base.
func mergeLinks[T any](base, extra []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(base))
	out := make([]T, 0, len(base)+len(extra))
	for _, l := range base {
		seen[key(l)] = struct{}{}
		out = append(out, l)
	}
	for _, l := range extra {
		if _, ok := seen[key(l)]; ok {
			continue
		}
		seen[key(l)] = struct{}{}
		out = append(out, l)
	}
	return out
}
