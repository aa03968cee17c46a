package repo

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by HotStore reads when the key is absent or
// expired.
var ErrKeyNotFound = errors.New("hot key not found")

// HotStore is the keyed hot tier (redis in production, in-memory in tests
// and degraded mode). Only the operations the domain actually uses are in
// the contract.
type HotStore interface {
	// Get returns the string value of key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes a string value with a TTL (0 means no expiry).
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// HGetAll returns all fields of a hash; empty map when missing.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HSet writes hash fields.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// LPush prepends values to a list (newest at head).
	LPush(ctx context.Context, key string, values ...string) error
	// LRange returns list elements in [start, stop], redis semantics.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// LLen returns the list length.
	LLen(ctx context.Context, key string) (int64, error)
	// LSet overwrites the element at index.
	LSet(ctx context.Context, key string, index int64, value string) error

	// Expire (re)sets the TTL of a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// Del removes keys.
	Del(ctx context.Context, keys ...string) error
}
