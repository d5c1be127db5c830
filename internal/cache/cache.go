package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	DefaultCapacity = 100
	DefaultTTL      = 300 * time.Second
)

// Value is what a retrieval leaves behind for later identical requests.
type Value struct {
	Content       string `json:"content"`
	RepositoryURL string `json:"repository_url,omitempty"`
}

// Cache maps a retrieval key to its last result until the entry expires.
// Entries are replaced wholesale, never updated in place.
type Cache interface {
	Get(ctx context.Context, key string) (Value, bool, error)
	Put(ctx context.Context, key string, value Value) error
}

type Config struct {
	Capacity int
	TTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	return c
}

// Key composes the cache key from the normalized query text and the
// repository URL the request resolved to.
func Key(query, repositoryURL string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query) + "\x00" + repositoryURL))
	return hex.EncodeToString(sum[:])
}

// NormalizeQuery lower-cases the query and collapses runs of whitespace.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
