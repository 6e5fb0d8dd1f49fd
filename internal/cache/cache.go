package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Cache stores chat interpretation responses keyed by trip and normalized
// message, so repeated identical messages skip the generative call.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// ChatKey builds the cache key for a trip's chat message. The message is
// normalized (lowercased, trimmed) and hashed to keep keys bounded.
func ChatKey(tripID types.ID, message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	sum := sha256.Sum256([]byte(normalized))
	return "chat:" + tripID.String() + ":" + hex.EncodeToString(sum[:16])
}
