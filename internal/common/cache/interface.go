package cache

import (
	"context"
	"time"
)

// Cache is the key-value cache abstraction used for rendered ranklists and
// solution logs. Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the value for the given key. A missing key returns
	// an empty string and no error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key-value pair. A zero ttl means no expiration.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX sets the value only if the key does not exist. Returns true
	// if the key was set.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Del deletes one or more keys.
	Del(ctx context.Context, keys ...string) error

	// Exists returns how many of the given keys exist.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Expire sets a timeout on a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining time to live of a key. -1 means no
	// expiration, -2 means the key does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping verifies the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
