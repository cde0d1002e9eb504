package persistence

import "context"

// KeyValueStore is the string key/value backend the collections are written to.
// Get reports found=false for an absent key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close()
}
