package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores serialized evaluation results so that resubmitting the same
// cleaned abstract skips classification, generation and scoring.
type Cache interface {
	// Get retrieves a cached evaluation by key. Returns nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a serialized evaluation with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Key derives the cache key for a cleaned abstract. The text is hashed so
// keys stay bounded regardless of abstract length.
func Key(cleanedText string) string {
	sum := sha256.Sum256([]byte(cleanedText))
	return hex.EncodeToString(sum[:])
}
