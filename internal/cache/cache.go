// Package cache stores resolved magnet metadata behind a small key-value
// contract with per-entry TTL. Implementations must be safe for
// concurrent use; backend failures are reported to callers, which treat
// them as cache misses rather than request failures.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"magnetview/models"
)

// DefaultTTL is how long a resolution stays fresh. Every hit refreshes
// the full window.
const DefaultTTL = 24 * time.Hour

// Store is the cache contract the resolver pipeline depends on.
type Store interface {
	// Exists reports whether a fresh entry is present for the link.
	Exists(ctx context.Context, link string) (bool, error)

	// Get returns the cached result for the link, or nil on a miss.
	// Corrupt stored data is treated as a miss, not an error.
	Get(ctx context.Context, link string) (*models.ResolutionResult, error)

	// Set stores the result with the given TTL. Value and expiry are set
	// together; there is no window where the key exists without a TTL.
	Set(ctx context.Context, link string, result *models.ResolutionResult, ttl time.Duration) error

	// Refresh extends the entry's expiry to the full TTL window without
	// rewriting the value. A no-op if the entry is gone.
	Refresh(ctx context.Context, link string, ttl time.Duration) error

	// Close releases the backend connection. Only process shutdown calls it.
	Close() error
}

// Key derives the storage key for a magnet link: a fixed-length one-way
// digest, so key size is bounded and the raw link never reaches the
// backend keyspace.
func Key(link string) string {
	sum := sha256.Sum256([]byte(link))
	return "magnet:" + hex.EncodeToString(sum[:])
}
