package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/piwi3910/boardcut/internal/logging"
	"github.com/piwi3910/boardcut/internal/metrics"
	"github.com/piwi3910/boardcut/internal/model"
)

// ResultCache is the best-effort cache used by the request flow. Store
// failures never reach the caller: reads degrade to misses and writes are
// dropped, both logged at warn. A nil store turns every call into a miss.
type ResultCache struct {
	store   Store
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Config configures a ResultCache.
type Config struct {
	Store   Store
	TTL     time.Duration // defaults to model.DefaultCacheTTL
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewResultCache(cfg Config) *ResultCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = model.DefaultCacheTTL
	}
	return &ResultCache{
		store:   cfg.Store,
		ttl:     ttl,
		log:     logging.OrDiscard(cfg.Logger),
		metrics: cfg.Metrics,
		now:     time.Now,
	}
}

// Enabled reports whether a store is configured.
func (c *ResultCache) Enabled() bool {
	return c.store != nil
}

// Get returns the cached result for hash. The second value is false on a
// miss, including when the store cannot be reached.
func (c *ResultCache) Get(ctx context.Context, hash string) (model.Result, bool) {
	if c.store == nil {
		return model.Result{}, false
	}
	e, err := c.store.Get(ctx, hash)
	switch {
	case err == nil:
		c.metrics.CacheRequest(metrics.ResultHit)
		c.log.Debug("cache hit", "hash", hash, "created_at", e.CreatedAt)
		return e.Result, true
	case errors.Is(err, model.ErrNotFound):
		c.metrics.CacheRequest(metrics.ResultMiss)
		c.log.Debug("cache miss", "hash", hash)
	default:
		c.metrics.CacheRequest(metrics.ResultError)
		c.log.Warn("cache read failed, treating as miss", "hash", hash, "error", err)
	}
	return model.Result{}, false
}

// Put stores result under hash with the configured TTL. Failures are logged
// and otherwise ignored.
func (c *ResultCache) Put(ctx context.Context, hash string, result model.Result) {
	if c.store == nil {
		return
	}
	result.Cached = false
	e := Entry{Hash: hash, CreatedAt: c.now().UTC(), TTL: c.ttl, Result: result}
	if err := c.store.Put(ctx, e); err != nil {
		c.metrics.CacheWrite(metrics.ResultError)
		c.log.Warn("cache write failed, result not stored", "hash", hash, "error", err)
		return
	}
	c.metrics.CacheWrite(metrics.ResultOK)
	c.log.Debug("cache write", "hash", hash, "ttl", c.ttl)
}

// Lookup fetches a result by hash for callers that only have the hash.
// Every failure, including an unreachable store, is reported as
// model.ErrNotFound.
func (c *ResultCache) Lookup(ctx context.Context, hash string) (model.Result, error) {
	result, ok := c.Get(ctx, hash)
	if !ok {
		return model.Result{}, model.ErrNotFound
	}
	return result, nil
}

// Recent lists up to limit recently written hashes, newest first. It
// returns an empty list when the store fails.
func (c *ResultCache) Recent(ctx context.Context, limit int) []Recent {
	if c.store == nil {
		return []Recent{}
	}
	recent, err := c.store.ListRecent(ctx, limit)
	if err != nil {
		c.log.Warn("cache index read failed", "error", err)
		return []Recent{}
	}
	if recent == nil {
		return []Recent{}
	}
	return recent
}

// Close releases the store.
func (c *ResultCache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
