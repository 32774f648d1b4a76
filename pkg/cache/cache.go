// Package cache stores rendered seamcarve artifacts keyed by their inputs.
//
// Carving is deterministic: the same image bytes carved with the same options
// always produce the same output. The pipeline therefore keys every artifact
// by a hash of the input image plus the options that influence the result,
// and serves repeated requests straight from a [Cache].
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several API instances
//   - [MongoCache]: shared cache with server-side TTL expiry
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] turns inputs into keys. [DefaultKeyer] hashes the options into
// the key; [ScopedKeyer] prefixes keys for tenant isolation.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact kind.
const (
	// TTLCarve is how long a carved image is kept.
	TTLCarve = 7 * 24 * time.Hour

	// TTLEnergy is how long an energy map is kept.
	TTLEnergy = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend could
// not answer. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
