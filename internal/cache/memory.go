package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/piwi3910/boardcut/internal/model"
)

type memoryItem struct {
	data      []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Entries are kept as encoded bytes so
// callers never share memory with the cache. Expiry is enforced on read.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]memoryItem
	indexLimit int
	now        func() time.Time
}

// NewMemoryStore creates an empty store whose recency index keeps at most
// indexLimit hashes (unbounded when indexLimit <= 0).
func NewMemoryStore(indexLimit int) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]memoryItem),
		indexLimit: indexLimit,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Used by tests to expire entries.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, hash string) (Entry, error) {
	s.mu.RLock()
	item, ok := s.items[hash]
	s.mu.RUnlock()
	if !ok || !s.now().Before(item.expiresAt) {
		return Entry{}, model.ErrNotFound
	}
	return decodeEntry(item.data)
}

func (s *MemoryStore) Put(_ context.Context, e Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[e.Hash] = memoryItem{data: data, createdAt: now, expiresAt: now.Add(e.TTL)}
	s.trimLocked()
	return nil
}

// trimLocked drops expired items and the oldest ones beyond the index limit.
func (s *MemoryStore) trimLocked() {
	now := s.now()
	for h, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, h)
		}
	}
	if s.indexLimit <= 0 || len(s.items) <= s.indexLimit {
		return
	}
	for _, r := range s.sortedLocked()[s.indexLimit:] {
		delete(s.items, r.Hash)
	}
}

// sortedLocked returns every item newest first; equal times order by hash
// descending, matching a Redis sorted set read in reverse.
func (s *MemoryStore) sortedLocked() []Recent {
	out := make([]Recent, 0, len(s.items))
	for h, item := range s.items {
		out = append(out, Recent{Hash: h, CreatedAt: item.createdAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Hash > out[j].Hash
	})
	return out
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]Recent, error) {
	if limit <= 0 {
		return nil, nil
	}
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Recent
	for _, r := range s.sortedLocked() {
		if !now.Before(s.items[r.Hash].expiresAt) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
