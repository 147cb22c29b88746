package repository

import "context"

// KVStore is the persistence contract every room store backend implements.
// A single key is read-your-writes; there are no transactions across keys and
// no optimistic locking, so concurrent upserts of one key race and the last
// one wins.
type KVStore interface {
	// Get returns the values of the requested keys. Keys that do not exist
	// are simply absent from the result.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Upsert creates or overwrites key with value.
	Upsert(ctx context.Context, key string, value []byte) error
}
