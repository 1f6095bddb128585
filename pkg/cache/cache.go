// Package cache stores generated placements so that a seed that was already
// solved for a world and flag set is served without running fill again.
//
// # Backends
//
//   - [FileCache]: one JSON file per key, for the CLI
//   - [RedisCache]: shared cache for several API instances
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are built by a [Keyer]. [DefaultKeyer] hashes every input that can
// change a placement (world hash, flags, seed, attempt budget), so a changed
// world or flag never hits a stale entry. [ScopedKeyer] adds a namespace
// prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// DefaultTTL is how long generated placements are kept.
const DefaultTTL = 7 * 24 * time.Hour
