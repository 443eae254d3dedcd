// Package cache stores solved schedules keyed by a digest of their inputs.
//
// Packing a large format sheet can take tens of seconds of solver time, so
// the pipeline caches extracted schedules and reuses them when the same
// manifest and configuration come back. Three backends are provided:
//
//   - FileCache: per-user cache directory, for CLI usage
//   - RedisCache: shared cache for CI fleets running the same format sheets
//   - NullCache: caching disabled
//
// Keys are built with ScheduleKey from the packing-relevant inputs; values
// are opaque bytes (the pipeline stores JSON-encoded schedules).
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A zero ttl stores the entry without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// ScheduleKey builds the cache key for a solved schedule from the
// packing-relevant inputs. parts must JSON-marshal deterministically; the
// pipeline passes the decoded manifest document and the solver configuration.
func ScheduleKey(parts ...any) string {
	return hashKey("schedule", parts...)
}
