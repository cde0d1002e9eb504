package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/job-search-service/internal/auth"
	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/store"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// TimestampLayout is the ISO-8601 form used for appliedAt and postedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MinPasswordLength applies to password changes.
const MinPasswordLength = 6

// JobFilter narrows SearchJobs. Empty fields match everything.
type JobFilter struct {
	Query  string
	Status domain.JobStatus
}

// JobBoardRepository provides typed access to the four collections.
type JobBoardRepository interface {
	Initialize(ctx context.Context) (bool, error)

	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id, password string) error

	GetJobs(ctx context.Context) ([]domain.Job, error)
	GetJobByID(ctx context.Context, id string) (*domain.Job, error)
	SearchJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error)
	Stats(ctx context.Context) (domain.DashboardStats, error)

	GetSavedJobs(ctx context.Context, userID string) ([]domain.SavedJobLink, error)
	SaveJob(ctx context.Context, userID, jobID string) (bool, error)
	GetAppliedJobs(ctx context.Context, userID string) ([]domain.AppliedJobLink, error)
	ApplyForJob(ctx context.Context, userID, jobID string) (bool, error)
}

type jobBoardRepository struct {
	collections *store.Collections
	hasher      auth.PasswordHasher
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string

	// serializes read-modify-write cycles so concurrent writers cannot drop updates
	mu sync.Mutex
}

// Option customizes the repository.
type Option func(*jobBoardRepository)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *jobBoardRepository) { r.now = now }
}

// WithIDGenerator overrides user id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *jobBoardRepository) { r.newID = fn }
}

// NewJobBoardRepository returns a repository over the given collections.
func NewJobBoardRepository(collections *store.Collections, hasher auth.PasswordHasher, logger *zap.Logger, opts ...Option) JobBoardRepository {
	r := &jobBoardRepository{
		collections: collections,
		hasher:      hasher,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize seeds the collections when the users key has never been written.
// It reports whether seeding happened.
func (r *jobBoardRepository) Initialize(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.collections.Exists(ctx, store.KeyUsers)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	users := seedUsers()
	for i := range users {
		hashed, err := r.hasher.Hash(users[i].Password)
		if err != nil {
			return false, apperrors.NewInternalError(err)
		}
		users[i].Password = hashed
	}

	// users last: it is the initialized sentinel
	if err := store.Write(ctx, r.collections, store.KeyJobs, seedJobs(r.now())); err != nil {
		return false, err
	}
	if err := store.Write(ctx, r.collections, store.KeySavedJobs, []domain.SavedJobLink{}); err != nil {
		return false, err
	}
	if err := store.Write(ctx, r.collections, store.KeyAppliedJobs, []domain.AppliedJobLink{}); err != nil {
		return false, err
	}
	if err := store.Write(ctx, r.collections, store.KeyUsers, users); err != nil {
		return false, err
	}

	r.logger.Info("seeded collections", zap.Int("users", len(users)))
	return true, nil
}

func (r *jobBoardRepository) users(ctx context.Context) ([]domain.User, error) {
	return store.Read[domain.User](ctx, r.collections, store.KeyUsers)
}

func (r *jobBoardRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].EmailMatches(email) {
			return &users[i], nil
		}
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
}

func (r *jobBoardRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfUser(users, id); i >= 0 {
		return &users[i], nil
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
}

func (r *jobBoardRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return r.users(ctx)
}

// CreateUser appends a new user. Email uniqueness is checked here only.
func (r *jobBoardRepository) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.EmailMatches(input.Email) {
			return nil, apperrors.NewDuplicateEmail(input.Email)
		}
	}

	hashed, err := r.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := domain.User{
		ID:         r.newID(),
		Username:   input.Username,
		Email:      strings.TrimSpace(input.Email),
		Password:   hashed,
		Role:       input.Role,
		Location:   input.Location,
		Experience: input.Experience,
		Phone:      input.Phone,
	}
	users = append(users, user)
	if err := store.Write(ctx, r.collections, store.KeyUsers, users); err != nil {
		return nil, err
	}

	r.logger.Info("user created", zap.String("user_id", user.ID))
	return &user, nil
}

// Authenticate returns the user whose email and password match.
func (r *jobBoardRepository) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}
	if !r.hasher.Compare(user.Password, password) {
		return nil, apperrors.NewInvalidCredentials()
	}
	return user, nil
}

// UpdateUser either changes the password or merges profile fields, never both.
func (r *jobBoardRepository) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.users(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfUser(users, id)
	if i < 0 {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}

	if patch.IsPasswordChange() {
		if !r.hasher.Compare(users[i].Password, patch.CurrentPassword) {
			return nil, apperrors.NewIncorrectPassword()
		}
		if len(patch.NewPassword) < MinPasswordLength {
			return nil, apperrors.NewPasswordTooShort(MinPasswordLength)
		}
		hashed, err := r.hasher.Hash(patch.NewPassword)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		users[i].Password = hashed
	} else {
		applyProfilePatch(&users[i], patch)
	}

	if err := store.Write(ctx, r.collections, store.KeyUsers, users); err != nil {
		return nil, err
	}
	updated := users[i]
	return &updated, nil
}

func applyProfilePatch(u *domain.User, patch domain.UserPatch) {
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Location != nil {
		u.Location = *patch.Location
	}
	if patch.Experience != nil {
		u.Experience = *patch.Experience
	}
	if patch.Phone != nil {
		u.Phone = patch.Phone
	}
	if patch.ProfilePicture != nil {
		u.ProfilePicture = patch.ProfilePicture
	}
}

// DeleteUser removes the user and every saved/applied link they own.
func (r *jobBoardRepository) DeleteUser(ctx context.Context, id, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.users(ctx)
	if err != nil {
		return err
	}
	i := indexOfUser(users, id)
	if i < 0 || !r.hasher.Compare(users[i].Password, password) {
		return apperrors.NewInvalidCredentials()
	}

	saved, err := store.Read[domain.SavedJobLink](ctx, r.collections, store.KeySavedJobs)
	if err != nil {
		return err
	}
	applied, err := store.Read[domain.AppliedJobLink](ctx, r.collections, store.KeyAppliedJobs)
	if err != nil {
		return err
	}

	// users is written last so a failed link write leaves the account in place for a retry
	if err := store.Write(ctx, r.collections, store.KeySavedJobs, withoutUser(saved, id, func(l domain.SavedJobLink) string { return l.UserID })); err != nil {
		return err
	}
	if err := store.Write(ctx, r.collections, store.KeyAppliedJobs, withoutUser(applied, id, func(l domain.AppliedJobLink) string { return l.UserID })); err != nil {
		return err
	}
	users = append(users[:i], users[i+1:]...)
	if err := store.Write(ctx, r.collections, store.KeyUsers, users); err != nil {
		return err
	}

	r.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (r *jobBoardRepository) GetJobs(ctx context.Context) ([]domain.Job, error) {
	return store.Read[domain.Job](ctx, r.collections, store.KeyJobs)
}

func (r *jobBoardRepository) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	jobs, err := r.GetJobs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, apperrors.NewNotFound("job", map[string]any{"id": id})
}

func (r *jobBoardRepository) SearchJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	jobs, err := r.GetJobs(ctx)
	if err != nil {
		return nil, err
	}
	return FilterJobs(jobs, filter), nil
}

// FilterJobs applies filter to an in-memory job list.
func FilterJobs(jobs []domain.Job, filter JobFilter) []domain.Job {
	out := make([]domain.Job, 0, len(jobs))
	for _, job := range jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if !job.Matches(filter.Query) {
			continue
		}
		out = append(out, job)
	}
	return out
}

func (r *jobBoardRepository) Stats(ctx context.Context) (domain.DashboardStats, error) {
	users, err := r.users(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	jobs, err := r.GetJobs(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{TotalUsers: len(users), TotalJobs: len(jobs)}
	for _, job := range jobs {
		switch job.Status {
		case domain.JobStatusActive:
			stats.ActiveJobs++
		case domain.JobStatusClosed:
			stats.ClosedJobs++
		}
	}
	return stats, nil
}

func (r *jobBoardRepository) GetSavedJobs(ctx context.Context, userID string) ([]domain.SavedJobLink, error) {
	saved, err := store.Read[domain.SavedJobLink](ctx, r.collections, store.KeySavedJobs)
	if err != nil {
		return nil, err
	}
	return onlyUser(saved, userID, func(l domain.SavedJobLink) string { return l.UserID }), nil
}

// SaveJob appends the link unless the pair already exists; it reports whether it inserted.
func (r *jobBoardRepository) SaveJob(ctx context.Context, userID, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved, err := store.Read[domain.SavedJobLink](ctx, r.collections, store.KeySavedJobs)
	if err != nil {
		return false, err
	}
	for _, l := range saved {
		if l.UserID == userID && l.JobID == jobID {
			return false, nil
		}
	}

	saved = append(saved, domain.SavedJobLink{UserID: userID, JobID: jobID})
	if err := store.Write(ctx, r.collections, store.KeySavedJobs, saved); err != nil {
		return false, err
	}
	return true, nil
}

func (r *jobBoardRepository) GetAppliedJobs(ctx context.Context, userID string) ([]domain.AppliedJobLink, error) {
	applied, err := store.Read[domain.AppliedJobLink](ctx, r.collections, store.KeyAppliedJobs)
	if err != nil {
		return nil, err
	}
	return onlyUser(applied, userID, func(l domain.AppliedJobLink) string { return l.UserID }), nil
}

// ApplyForJob records a pending application unless one exists for the pair.
func (r *jobBoardRepository) ApplyForJob(ctx context.Context, userID, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	applied, err := store.Read[domain.AppliedJobLink](ctx, r.collections, store.KeyAppliedJobs)
	if err != nil {
		return false, err
	}
	for _, l := range applied {
		if l.UserID == userID && l.JobID == jobID {
			return false, nil
		}
	}

	applied = append(applied, domain.AppliedJobLink{
		UserID:    userID,
		JobID:     jobID,
		Status:    domain.ApplicationStatusPending,
		AppliedAt: r.now().UTC().Format(TimestampLayout),
	})
	if err := store.Write(ctx, r.collections, store.KeyAppliedJobs, applied); err != nil {
		return false, err
	}
	return true, nil
}

func indexOfUser(users []domain.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func onlyUser[T any](links []T, userID string, owner func(T) string) []T {
	out := make([]T, 0)
	for _, l := range links {
		if owner(l) == userID {
			out = append(out, l)
		}
	}
	return out
}

func withoutUser[T any](links []T, userID string, owner func(T) string) []T {
	out := make([]T, 0, len(links))
	for _, l := range links {
		if owner(l) != userID {
			out = append(out, l)
		}
	}
	return out
}
