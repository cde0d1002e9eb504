package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-search-service/internal/domain"
	"github.com/spec-kit/job-search-service/internal/persistence"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

type failingKV struct {
	*persistence.Memory
	err error
}

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }

func TestReadAbsentKeyIsEmpty(t *testing.T) {
	c := NewCollections(persistence.NewMemory())

	jobs, err := Read[domain.Job](context.Background(), c, KeyJobs)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)

	exists, err := c.Exists(context.Background(), KeyJobs)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewCollections(persistence.NewMemory())

	phone := "+1 555 0100"
	users := []domain.User{
		{ID: "1", Username: "John Doe", Email: "john@example.com", Password: "password123", Role: "UI/UX Designer"},
		{ID: "2", Username: "Jane", Email: "jane@example.com", Password: "secret1", Phone: &phone},
	}
	require.NoError(t, Write(ctx, c, KeyUsers, users))

	got, err := Read[domain.User](ctx, c, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, users, got)

	applied := []domain.AppliedJobLink{{UserID: "1", JobID: "2", Status: domain.ApplicationStatusPending, AppliedAt: "2024-01-02T03:04:05.000Z"}}
	require.NoError(t, Write(ctx, c, KeyAppliedJobs, applied))
	gotApplied, err := Read[domain.AppliedJobLink](ctx, c, KeyAppliedJobs)
	require.NoError(t, err)
	assert.Equal(t, applied, gotApplied)
}

func TestWriteNilStoresEmptyArray(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemory()
	c := NewCollections(kv)

	require.NoError(t, Write[domain.SavedJobLink](ctx, c, KeySavedJobs, nil))
	raw, found, err := kv.Get(ctx, string(KeySavedJobs))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", raw)
}

func TestMalformedDataIsStorageFailure(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemory()
	require.NoError(t, kv.Set(ctx, string(KeyUsers), `[{"id":`))

	_, err := Read[domain.User](ctx, NewCollections(kv), KeyUsers)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure))
}

func TestBackendErrorsAreStorageFailures(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection reset")
	c := NewCollections(failingKV{Memory: persistence.NewMemory(), err: cause})

	_, err := Read[domain.Job](ctx, c, KeyJobs)
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure))
	assert.True(t, errors.Is(err, cause))

	err = Write(ctx, c, KeyJobs, []domain.Job{})
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure))

	_, err = c.Exists(ctx, KeyUsers)
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure))
}
