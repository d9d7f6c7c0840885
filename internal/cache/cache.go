// Package cache stores packing results by request hash for a limited time
// and keeps a write-ordered index of recent hashes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/piwi3910/boardcut/internal/model"
)

// Entry is one cached result.
type Entry struct {
	Hash      string        `json:"hash"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
	Result    model.Result  `json:"result"`
}

// ExpiresAt returns when the entry stops being retrievable.
func (e Entry) ExpiresAt() time.Time {
	return e.CreatedAt.Add(e.TTL)
}

// Recent is one item of the recency index.
type Recent struct {
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence behind the result cache. Implementations
// return model.ErrNotFound for unknown or expired hashes and wrap I/O
// failures with model.ErrCacheUnavailable.
type Store interface {
	Get(ctx context.Context, hash string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	// ListRecent returns up to limit live entries, newest write first.
	ListRecent(ctx context.Context, limit int) ([]Recent, error)
	Close() error
}

// Keys used in shared stores: one value per hash plus a sorted set scored by write time.
const (
	keyPrefix = "opt:"
	indexKey  = "opt:index"
)

func valueKey(hash string) string {
	return keyPrefix + hash
}

func encodeEntry(e Entry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry %s: %w", e.Hash, err)
	}
	return data, nil
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: failed to decode cache entry: %w", model.ErrCacheUnavailable, err)
	}
	return e, nil
}
