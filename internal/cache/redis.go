package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/piwi3910/boardcut/internal/model"
)

// RedisStore keeps entries in Redis. Each result lives under opt:<hash> with
// a native TTL, and opt:index is a sorted set of hashes scored by write time
// in milliseconds.
type RedisStore struct {
	client     *redis.Client
	indexLimit int
	now        func() time.Time
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	URL        string // redis://[:password@]host:port/db
	IndexLimit int    // newest hashes kept in the index; <= 0 keeps all
}

// NewRedisStore parses the URL and creates a client. No connection is made
// until the first command.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	ro, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisStoreFromClient(redis.NewClient(ro), opts.IndexLimit), nil
}

// NewRedisStoreFromClient wraps an existing client. The store owns it and
// closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, indexLimit int) *RedisStore {
	return &RedisStore{client: client, indexLimit: indexLimit, now: time.Now}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", model.ErrCacheUnavailable, op, err)
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping redis", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, hash string) (Entry, error) {
	data, err := s.client.Get(ctx, valueKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, model.ErrNotFound
	}
	if err != nil {
		return Entry{}, unavailable("get "+hash, err)
	}
	return decodeEntry(data)
}

// Put writes the value and its index entry in one MULTI/EXEC block, then
// trims the index to the newest indexLimit members.
func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if e.TTL <= 0 {
		return fmt.Errorf("cache entry %s has no ttl", e.Hash)
	}
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, valueKey(e.Hash), data, e.TTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(s.now().UnixMilli()), Member: e.Hash})
	if s.indexLimit > 0 {
		pipe.ZRemRangeByRank(ctx, indexKey, 0, int64(-s.indexLimit-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("put "+e.Hash, err)
	}
	return nil
}

// ListRecent walks the index newest first and drops members whose value
// has already expired.
func (s *RedisStore) ListRecent(ctx context.Context, limit int) ([]Recent, error) {
	if limit <= 0 {
		return nil, nil
	}

	var out []Recent
	var start int64
	for len(out) < limit {
		stop := start + int64(limit) - 1
		members, err := s.client.ZRevRangeWithScores(ctx, indexKey, start, stop).Result()
		if err != nil {
			return nil, unavailable("read index", err)
		}
		if len(members) == 0 {
			break
		}

		pipe := s.client.Pipeline()
		exists := make([]*redis.IntCmd, len(members))
		for i, m := range members {
			exists[i] = pipe.Exists(ctx, valueKey(m.Member.(string)))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, unavailable("check index members", err)
		}

		var expired []any
		for i, m := range members {
			hash := m.Member.(string)
			if exists[i].Val() == 0 {
				expired = append(expired, hash)
				continue
			}
			if len(out) < limit {
				out = append(out, Recent{Hash: hash, CreatedAt: time.UnixMilli(int64(m.Score)).UTC()})
			}
		}
		if len(expired) > 0 {
			if err := s.client.ZRem(ctx, indexKey, expired...).Err(); err != nil {
				return nil, unavailable("prune index", err)
			}
		}

		if int64(len(members)) < int64(limit) {
			break
		}
		// Removed members shift later ones down by len(expired).
		start = stop + 1 - int64(len(expired))
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
