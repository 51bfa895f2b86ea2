package cache

import (
	"context"
	"time"
)

// Cache is the application-wide caching interface.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Set stores a value under key with a TTL. value is JSON-serialized.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get loads a value into dest. Returns (false, nil) on cache miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// SetNX stores value only if key does not exist yet.
	// Returns true if the key was set, false if it already existed.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
