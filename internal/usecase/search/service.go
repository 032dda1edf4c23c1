// Package search orchestrates a full pipeline run: claim a pending
// request, expand its query, fan out registry lookups, merge, persist.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/query"
	"github.com/clearmark/clearmark/internal/logger"
	"github.com/clearmark/clearmark/internal/metrics"
)

// Outcome summarizes one completed run.
type Outcome struct {
	SearchID      int64
	BaseTrademark string
	ProcessedAt   time.Time
	Rows          []domain.ResultRow
}

// Service runs the search pipeline for pending requests.
type Service struct {
	requests RequestStore
	results  ResultStore
	fetcher  *Fetcher
	parser   query.Parser
	now      func() time.Time
}

// New creates a pipeline service.
func New(requests RequestStore, results ResultStore, fetcher *Fetcher, parser query.Parser) *Service {
	return &Service{
		requests: requests,
		results:  results,
		fetcher:  fetcher,
		parser:   parser,
		now:      time.Now,
	}
}

// Run executes the pipeline for one request. The request must be
// pending; results are written before the status flips, so a crash in
// between leaves the request retryable rather than silently consumed.
func (s *Service) Run(ctx context.Context, searchID int64) (Outcome, error) {
	log := logger.FromContext(ctx)

	req, err := s.requests.FindPending(ctx, searchID)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return Outcome{}, err
	}

	dims := s.parser.Parse(req.Query())
	combos := dims.Combinations()
	log.Info("expanded search query",
		zap.Int64("searchId", searchID),
		zap.Int("combinations", len(combos)))

	slots := s.fetcher.Fetch(ctx, combos)
	merged := mergeItems(slots)

	processedAt := s.now().UTC()
	rows := make([]domain.ResultRow, 0, len(merged))
	for i, item := range merged {
		rows = append(rows, domain.NewResultRow(
			searchID, i+1, req.BaseTrademark(), processedAt, item))
	}

	if err := s.results.Append(ctx, rows); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrResultPersist, err)
	}

	if err := s.requests.MarkConsumed(ctx, searchID, processedAt); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return Outcome{}, fmt.Errorf("mark consumed: %w", err)
	}

	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	log.Info("pipeline run complete",
		zap.Int64("searchId", searchID),
		zap.Int("rows", len(rows)))

	return Outcome{
		SearchID:      searchID,
		BaseTrademark: req.BaseTrademark(),
		ProcessedAt:   processedAt,
		Rows:          rows,
	}, nil
}
