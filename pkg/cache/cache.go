// Package cache stores rendered artifacts keyed by content hash.
//
// Rendering a scene is cheap; converting it to PNG or PDF runs an external
// process. The pipeline caches converted artifacts under a key derived from
// the SVG's SHA-256, so identical drawings are converted once.
//
// Implementations:
//   - [FileCache]: files under the user cache directory, used by the CLI
//   - [MemoryCache]: bounded LRU, used by the long-running server
//   - [NullCache]: never stores, used with --no-cache
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
type Cache interface {
	// Get returns the cached data and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl <= 0 means the entry does not expire.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKey builds the cache key for a converted artifact.
// The key format is: artifact:<format>:<hash(svgHash, format, scale)>
func ArtifactKey(svgHash, format string, scale float64) string {
	return hashKey(fmt.Sprintf("artifact:%s", format), svgHash, format, strconv.FormatFloat(scale, 'f', -1, 64))
}
