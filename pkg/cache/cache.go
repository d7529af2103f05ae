// Package cache provides the key/value caches used by the scheduling
// pipeline.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as files under the user's cache directory (CLI)
//   - [RedisCache] shares entries between API server instances
//   - [NullCache] disables caching
//
// Keys are produced by a [Keyer] so that the CLI and the API server agree on
// the layout of the key space; [ScopedKeyer] adds a tenant prefix.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as hit == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying connections.
	Close() error
}

// Entry lifetimes for the value kinds the pipeline caches.
const (
	// TTLSchedule is how long a leveled schedule stays cached. Results are a
	// pure function of the project, so the TTL only bounds disk and memory use.
	TTLSchedule = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered artifacts (SVG, DOT, CSV) stay cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// GetJSON reads key from c and decodes it into v. It returns ErrCacheMiss
// when the key is absent or the stored value no longer decodes.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
