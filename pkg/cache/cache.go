// Package cache stores built river networks and rendered artifacts so that
// repeated runs over unchanged input skip the geometry pipeline.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for teams and CI runners
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// A [Keyer] derives keys from a hash of the input bytes plus every option
// that changes the output, so a cached network is only reused when a rebuild
// would produce the same graph. [NewScopedKeyer] adds a prefix, which the CLI
// uses to separate entries written by different releases.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found. A missing or
	// expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live values for cached entries.
const (
	NetworkTTL  = 30 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)
