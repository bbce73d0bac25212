// Package cache stores structured condition parses keyed by content, so
// identical condition text never hits the LLM collaborator twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from condition text
func Key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "paycheck:v1:" + hex.EncodeToString(hash[:])
}
