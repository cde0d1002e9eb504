package store

import (
	"context"
	"encoding/json"

	"github.com/spec-kit/job-search-service/internal/persistence"
	apperrors "github.com/spec-kit/job-search-service/pkg/util/errorutil"
)

// Key names one collection in the key-value backend.
type Key string

const (
	KeyUsers       Key = "users"
	KeyJobs        Key = "jobs"
	KeySavedJobs   Key = "saved_jobs"
	KeyAppliedJobs Key = "applied_jobs"
)

// Collections stores each collection as a JSON array under its key. It does no schema
// checks; every read decodes the whole array and every write replaces it.
type Collections struct {
	kv persistence.KeyValueStore
}

// NewCollections wraps a key-value backend.
func NewCollections(kv persistence.KeyValueStore) *Collections {
	return &Collections{kv: kv}
}

// Exists reports whether the key has ever been written.
func (c *Collections) Exists(ctx context.Context, key Key) (bool, error) {
	_, found, err := c.kv.Get(ctx, string(key))
	if err != nil {
		return false, apperrors.NewStorageFailure(string(key), err)
	}
	return found, nil
}

// Ping checks the backend.
func (c *Collections) Ping(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

// Read decodes the records under key. An absent key yields an empty slice.
func Read[T any](ctx context.Context, c *Collections, key Key) ([]T, error) {
	raw, found, err := c.kv.Get(ctx, string(key))
	if err != nil {
		return nil, apperrors.NewStorageFailure(string(key), err)
	}
	if !found || raw == "" {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, apperrors.NewStorageFailure(string(key), err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Write replaces the records under key.
func Write[T any](ctx context.Context, c *Collections, key Key, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return apperrors.NewStorageFailure(string(key), err)
	}
	if err := c.kv.Set(ctx, string(key), string(raw)); err != nil {
		return apperrors.NewStorageFailure(string(key), err)
	}
	return nil
}
