package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/job-search-service/internal/auth"
	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/persistence"
	"github.com/spec-kit/job-search-service/internal/store"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestRepo(t *testing.T, opts ...Option) (JobBoardRepository, *persistence.Memory) {
	t.Helper()
	kv := persistence.NewMemory()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	repo := NewJobBoardRepository(store.NewCollections(kv), auth.PlainHasher{}, zap.NewNop(), opts...)
	return repo, kv
}

func seededRepo(t *testing.T) JobBoardRepository {
	t.Helper()
	repo, _ := newTestRepo(t)
	seeded, err := repo.Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)
	return repo
}

func register(t *testing.T, repo JobBoardRepository, email, password string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), domain.NewUser{Username: "A", Email: email, Password: password, Role: "Engineer"})
	require.NoError(t, err)
	return u
}

func TestInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	seeded, err := repo.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	jobs, err := repo.GetJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, domain.JobStatusActive, j.Status)
		assert.Equal(t, "2024-05-06T07:08:09.000Z", j.PostedAt)
	}

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[1].IsAdmin())
	assert.False(t, users[0].IsAdmin())

	for _, key := range []store.Key{store.KeySavedJobs, store.KeyAppliedJobs} {
		raw, found, err := kv.Get(ctx, string(key))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "[]", raw)
	}

	register(t, repo, "new@x.com", "secret1")
	before, _, _ := kv.Get(ctx, string(store.KeyUsers))

	seeded, err = repo.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	after, _, _ := kv.Get(ctx, string(store.KeyUsers))
	assert.Equal(t, before, after)
}

func TestInitializeChecksUsersKeyOnly(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)
	require.NoError(t, kv.Set(ctx, string(store.KeyUsers), "[]"))

	seeded, err := repo.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	jobs, err := repo.GetJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestInitializeHashesSeedPasswords(t *testing.T) {
	ctx := context.Background()
	repo := NewJobBoardRepository(store.NewCollections(persistence.NewMemory()), auth.BcryptHasher{Cost: 4}, zap.NewNop())
	_, err := repo.Initialize(ctx)
	require.NoError(t, err)

	u, err := repo.GetUserByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", u.Password)

	_, err = repo.Authenticate(ctx, "john@example.com", "password123")
	assert.NoError(t, err)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	u := register(t, repo, "a@x.com", "secret1")
	assert.NotEmpty(t, u.ID)
	assert.Nil(t, u.ProfilePicture)

	_, err := repo.CreateUser(ctx, domain.NewUser{Email: "A@X.COM", Password: "other1"})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))

	_, err = repo.CreateUser(ctx, domain.NewUser{Email: "JOHN@example.com", Password: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestCreateUserConcurrentSameEmail(t *testing.T) {
	repo := seededRepo(t)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "Race@x.com"
			if i%2 == 0 {
				email = "race@X.com"
			}
			_, err := repo.CreateUser(context.Background(), domain.NewUser{Email: email, Password: "secret1"})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))
		}
	}
	assert.Equal(t, 1, ok)
}

func TestCreateUserUsesGeneratedIDs(t *testing.T) {
	n := 0
	repo, _ := newTestRepo(t, WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }))

	u1, err := repo.CreateUser(context.Background(), domain.NewUser{Email: "1@x.com"})
	require.NoError(t, err)
	u2, err := repo.CreateUser(context.Background(), domain.NewUser{Email: "2@x.com"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", u1.ID)
	assert.Equal(t, "id-2", u2.ID)
}

func TestGetUserLookups(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	u, err := repo.GetUserByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", u.ID)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	u, err = repo.GetUserByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.Username)

	_, err = repo.GetUserByID(ctx, "404")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	register(t, repo, "a@x.com", "secret1")

	u, err := repo.Authenticate(ctx, "A@X.COM", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = repo.Authenticate(ctx, "a@x.com", "wrong")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = repo.Authenticate(ctx, "ghost@x.com", "secret1")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestJobLookups(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	job, err := repo.GetJobByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Frontend Developer", job.Title)

	_, err = repo.GetJobByID(ctx, "99")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	found, err := repo.SearchJobs(ctx, JobFilter{Query: "techcorp"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)

	found, err = repo.SearchJobs(ctx, JobFilter{Query: "usa", Status: domain.JobStatusClosed})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = repo.SearchJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)
	_, err := repo.Initialize(ctx)
	require.NoError(t, err)

	jobs, err := repo.GetJobs(ctx)
	require.NoError(t, err)
	jobs = append(jobs, domain.Job{ID: "3", Title: "Graphic Designer", Status: domain.JobStatusClosed})
	require.NoError(t, store.Write(ctx, store.NewCollections(kv), store.KeyJobs, jobs))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{TotalUsers: 2, TotalJobs: 3, ActiveJobs: 2, ClosedJobs: 1}, stats)
}

func TestSaveJobGuardsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	inserted, err := repo.SaveJob(ctx, "1", "2")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.SaveJob(ctx, "1", "2")
	require.NoError(t, err)
	assert.False(t, inserted)

	_, err = repo.SaveJob(ctx, "2", "2")
	require.NoError(t, err)

	saved, err := repo.GetSavedJobs(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []domain.SavedJobLink{{UserID: "1", JobID: "2"}}, saved)

	none, err := repo.GetSavedJobs(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestApplyForJob(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	inserted, err := repo.ApplyForJob(ctx, "1", "1")
	require.NoError(t, err)
	assert.True(t, inserted)

	applied, err := repo.GetAppliedJobs(ctx, "1")
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, domain.ApplicationStatusPending, applied[0].Status)
	ts, err := time.Parse(time.RFC3339, applied[0].AppliedAt)
	require.NoError(t, err)
	assert.True(t, ts.Equal(fixedNow))

	inserted, err = repo.ApplyForJob(ctx, "1", "1")
	require.NoError(t, err)
	assert.False(t, inserted)

	applied, err = repo.GetAppliedJobs(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, applied, 1)
}

func TestUpdateUserPasswordChange(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	u := register(t, repo, "a@x.com", "secret1")

	_, err := repo.UpdateUser(ctx, u.ID, domain.UserPatch{CurrentPassword: "wrong", NewPassword: "newpass1"})
	assert.True(t, errors.Is(err, apperrors.ErrIncorrectPassword))
	stored, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret1", stored.Password)

	_, err = repo.UpdateUser(ctx, u.ID, domain.UserPatch{CurrentPassword: "secret1", NewPassword: "short"})
	assert.True(t, errors.Is(err, apperrors.ErrPasswordTooShort))

	name := "ignored"
	updated, err := repo.UpdateUser(ctx, u.ID, domain.UserPatch{CurrentPassword: "secret1", NewPassword: "newpass1", Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "newpass1", updated.Password)
	assert.Equal(t, "A", updated.Username)

	_, err = repo.Authenticate(ctx, "a@x.com", "newpass1")
	assert.NoError(t, err)
}

func TestUpdateUserProfileMerge(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	u := register(t, repo, "a@x.com", "secret1")

	location := "Berlin"
	phone := "+49 30 1234"
	pic := "file:///avatar.png"
	updated, err := repo.UpdateUser(ctx, u.ID, domain.UserPatch{Location: &location, Phone: &phone, ProfilePicture: &pic, NewPassword: "ignored1"})
	require.NoError(t, err)

	assert.Equal(t, "Berlin", updated.Location)
	assert.Equal(t, "Engineer", updated.Role)
	assert.Equal(t, "secret1", updated.Password)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
	require.NotNil(t, updated.ProfilePicture)
	assert.Equal(t, pic, *updated.ProfilePicture)

	// email uniqueness is only enforced at creation
	taken := "john@example.com"
	updated, err = repo.UpdateUser(ctx, u.ID, domain.UserPatch{Email: &taken})
	require.NoError(t, err)
	assert.Equal(t, taken, updated.Email)

	_, err = repo.UpdateUser(ctx, "missing", domain.UserPatch{Location: &location})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	u := register(t, repo, "a@x.com", "secret1")

	for _, jobID := range []string{"1", "2"} {
		_, err := repo.SaveJob(ctx, u.ID, jobID)
		require.NoError(t, err)
		_, err = repo.ApplyForJob(ctx, u.ID, jobID)
		require.NoError(t, err)
	}
	_, err := repo.SaveJob(ctx, "1", "1")
	require.NoError(t, err)
	_, err = repo.ApplyForJob(ctx, "1", "2")
	require.NoError(t, err)

	err = repo.DeleteUser(ctx, u.ID, "wrong")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	err = repo.DeleteUser(ctx, "missing", "secret1")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	require.NoError(t, repo.DeleteUser(ctx, u.ID, "secret1"))

	_, err = repo.GetUserByID(ctx, u.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	saved, err := repo.GetSavedJobs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
	applied, err := repo.GetAppliedJobs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, applied)

	otherSaved, err := repo.GetSavedJobs(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, otherSaved, 1)
	otherApplied, err := repo.GetAppliedJobs(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, otherApplied, 1)
}

func TestCorruptCollectionPropagates(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)
	require.NoError(t, kv.Set(ctx, string(store.KeySavedJobs), "{not json"))

	_, err := repo.SaveJob(ctx, "1", "1")
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure))
	_, err = repo.GetSavedJobs(ctx, "1")
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure))
}

// failOnceKV fails the first Set on one key.
type failOnceKV struct {
	*persistence.Memory
	key    string
	failed bool
}

func (f *failOnceKV) Set(ctx context.Context, key, value string) error {
	if key == f.key && !f.failed {
		f.failed = true
		return fmt.Errorf("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestDeleteUserRetryableAfterLinkWriteFailure(t *testing.T) {
	for _, key := range []store.Key{store.KeySavedJobs, store.KeyAppliedJobs} {
		t.Run(string(key), func(t *testing.T) {
			ctx := context.Background()
			kv := &failOnceKV{Memory: persistence.NewMemory()}
			repo := NewJobBoardRepository(store.NewCollections(kv), auth.PlainHasher{}, zap.NewNop())
			_, err := repo.Initialize(ctx)
			require.NoError(t, err)

			_, err = repo.SaveJob(ctx, "1", "1")
			require.NoError(t, err)
			_, err = repo.ApplyForJob(ctx, "1", "2")
			require.NoError(t, err)

			kv.key = string(key)
			err = repo.DeleteUser(ctx, "1", "password123")
			require.True(t, errors.Is(err, apperrors.ErrStorageFailure))

			_, err = repo.GetUserByID(ctx, "1")
			require.NoError(t, err, "user must survive a failed cascade")

			require.NoError(t, repo.DeleteUser(ctx, "1", "password123"))

			_, err = repo.GetUserByID(ctx, "1")
			assert.True(t, errors.Is(err, apperrors.ErrNotFound))
			saved, err := repo.GetSavedJobs(ctx, "1")
			require.NoError(t, err)
			assert.Empty(t, saved)
			applied, err := repo.GetAppliedJobs(ctx, "1")
			require.NoError(t, err)
			assert.Empty(t, applied)
		})
	}
}

func TestEmailLookupIgnoresSurroundingSpaces(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	register(t, repo, "  padded@x.com ", "secret1")

	u, err := repo.Authenticate(ctx, "padded@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "padded@x.com", u.Email)

	_, err = repo.Authenticate(ctx, " PADDED@x.com  ", "secret1")
	assert.NoError(t, err)

	_, err = repo.CreateUser(ctx, domain.NewUser{Username: "B", Email: "padded@x.com ", Password: "secret1"})
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEmail))
}
