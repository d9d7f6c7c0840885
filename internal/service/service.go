// Package service ties hashing, the result cache and the optimizer into the
// request flow used by the CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/piwi3910/boardcut/internal/cache"
	"github.com/piwi3910/boardcut/internal/canon"
	"github.com/piwi3910/boardcut/internal/engine"
	"github.com/piwi3910/boardcut/internal/logging"
	"github.com/piwi3910/boardcut/internal/model"
)

// Service answers optimization requests, serving repeated requests from
// the cache. Two identical requests running at the same time may both be
// computed; the last write wins.
type Service struct {
	optimizer *engine.Optimizer
	cache     *cache.ResultCache
	log       *slog.Logger
}

// Config holds the collaborators of a Service. A nil Cache disables caching.
type Config struct {
	Optimizer *engine.Optimizer
	Cache     *cache.ResultCache
	Logger    *slog.Logger
}

func New(cfg Config) *Service {
	s := &Service{
		optimizer: cfg.Optimizer,
		cache:     cfg.Cache,
		log:       logging.OrDiscard(cfg.Logger),
	}
	if s.optimizer == nil {
		s.optimizer = engine.New(engine.Config{Logger: cfg.Logger})
	}
	if s.cache == nil {
		s.cache = cache.NewResultCache(cache.Config{Logger: cfg.Logger})
	}
	return s
}

// Optimize returns the layout for req, computing it only when the cache
// has no result for the request hash. Invalid requests fail before the
// cache is consulted. Sizes are rounded to the hashed precision first, so a
// cached result is exactly what packing the request would produce.
func (s *Service) Optimize(ctx context.Context, req model.Request) (model.Result, error) {
	req = canon.RoundRequest(req)
	if err := engine.Validate(req); err != nil {
		return model.Result{}, err
	}
	hash := canon.Hash(req)
	log := s.log.With("hash", hash)

	if cached, ok := s.cache.Get(ctx, hash); ok {
		log.Info("serving cached result", "sheets", cached.SheetsUsed)
		cached.Hash = hash
		cached.Cached = true
		return cached, nil
	}

	result, err := s.optimizer.Optimize(ctx, req)
	if err != nil {
		return model.Result{}, fmt.Errorf("failed to optimize %s: %w", hash, err)
	}
	result.Hash = hash
	log.Info("computed result",
		"sheets", result.SheetsUsed,
		"unplaced", len(result.Unplaced),
		"utilization", result.Utilization,
		"elapsed", result.Elapsed)

	s.cache.Put(ctx, hash, result)
	return result, nil
}

// Lookup returns a previously computed result. It fails with
// model.ErrNotFound when the hash was never computed or has expired.
func (s *Service) Lookup(ctx context.Context, hash string) (model.Result, error) {
	if !canon.ValidHash(hash) {
		return model.Result{}, fmt.Errorf("invalid hash %q: %w", hash, model.ErrNotFound)
	}
	result, err := s.cache.Lookup(ctx, hash)
	if err != nil {
		return model.Result{}, err
	}
	result.Hash = hash
	result.Cached = true
	return result, nil
}

// Recent lists the most recently computed hashes, newest first.
func (s *Service) Recent(ctx context.Context, limit int) []cache.Recent {
	return s.cache.Recent(ctx, limit)
}

// Compare runs every split rule over req without touching the cache.
func (s *Service) Compare(ctx context.Context, req model.Request) ([]engine.ComparisonResult, error) {
	results, err := s.optimizer.CompareSplitRules(ctx, req)
	if err != nil {
		return nil, err
	}
	for i := range results {
		scenario := req
		scenario.SplitRule = results[i].Rule
		results[i].Result.Hash = canon.Hash(scenario)
	}
	return results, nil
}

// Close releases the cache store.
func (s *Service) Close() error {
	return s.cache.Close()
}
