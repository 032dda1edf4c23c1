package search

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/clearmark/clearmark/internal/domain/query"
	"github.com/clearmark/clearmark/internal/domain/registry"
)

const defaultCallTimeout = 15 * time.Second

// Fetcher runs registry lookups for a combination set over a bounded
// worker pool. Pool capacity caps in-flight calls regardless of how
// many combinations a query expands into.
type Fetcher struct {
	registry    Registry
	pool        *ants.Pool
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewFetcher creates a fetcher with the given concurrency cap.
func NewFetcher(reg Registry, maxConcurrent int, callTimeout time.Duration, logger *zap.Logger) (*Fetcher, error) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(maxConcurrent)
	if err != nil {
		return nil, err
	}
	return &Fetcher{
		registry:    reg,
		pool:        pool,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// Fetch looks up every combination and returns one item slice per
// combination, positionally aligned with the input. A failed lookup
// yields an empty slot and is logged; it never aborts the other calls.
func (f *Fetcher) Fetch(ctx context.Context, combos []query.Combination) [][]registry.Item {
	slots := make([][]registry.Item, len(combos))
	var wg sync.WaitGroup

	for i, combo := range combos {
		wg.Add(1)
		i, combo := i, combo
		task := func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, f.callTimeout)
			defer cancel()

			items, err := f.registry.Search(callCtx, combo)
			if err != nil {
				f.logger.Warn("registry lookup failed",
					zap.String("trademarkName", combo.Name),
					zap.String("classification", combo.Classification),
					zap.String("similarityCode", combo.SimilarityCode),
					zap.Error(err))
				return
			}
			slots[i] = items
		}
		if err := f.pool.Submit(task); err != nil {
			// Pool released or broken; run inline so the slot set stays complete.
			task()
		}
	}

	wg.Wait()
	return slots
}

// Release frees the worker pool. The fetcher must not be used after.
func (f *Fetcher) Release() {
	f.pool.Release()
}
