// Package review serves persisted run results and records downstream
// evaluations against them.
package review

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/logger"
)

// Evaluation is one verdict to record against a result row.
type Evaluation struct {
	ApplicationNumber string
	Verdict           string
}

// ResultSet pairs a request with its persisted rows.
type ResultSet struct {
	Request domain.SearchRequest
	Rows    []domain.ResultRow
}

// Service reads results and applies evaluations.
type Service struct {
	requests RequestReader
	results  ResultStore
}

// New creates a review service.
func New(requests RequestReader, results ResultStore) *Service {
	return &Service{requests: requests, results: results}
}

// Results returns the request and every row its run produced, in run
// order. A consumed request with no rows returns an empty list.
func (s *Service) Results(ctx context.Context, searchID int64) (ResultSet, error) {
	req, err := s.requests.Get(ctx, searchID)
	if err != nil {
		return ResultSet{}, err
	}

	rows, err := s.results.ListBySearch(ctx, searchID)
	if err != nil {
		return ResultSet{}, fmt.Errorf("list results: %w", err)
	}

	return ResultSet{Request: req, Rows: rows}, nil
}

// Evaluate records verdicts against the rows of one run, matched by
// application number. Returns how many rows were annotated; verdicts
// naming an unknown application number are counted as zero matches,
// not errors.
func (s *Service) Evaluate(ctx context.Context, searchID int64, evals []Evaluation) (int, error) {
	if len(evals) == 0 {
		return 0, fmt.Errorf("%w: at least one evaluation is required", domain.ErrInvalidInput)
	}
	for _, e := range evals {
		if strings.TrimSpace(e.ApplicationNumber) == "" {
			return 0, fmt.Errorf("%w: applicationNumber is required", domain.ErrInvalidInput)
		}
	}

	if _, err := s.requests.Get(ctx, searchID); err != nil {
		return 0, err
	}

	updated := 0
	for _, e := range evals {
		n, err := s.results.SetEvaluation(ctx, searchID, e.ApplicationNumber, e.Verdict)
		if err != nil {
			return updated, fmt.Errorf("set evaluation: %w", err)
		}
		updated += n
	}

	logger.FromContext(ctx).Info("evaluations recorded",
		zap.Int64("searchId", searchID),
		zap.Int("submitted", len(evals)),
		zap.Int("updated", updated))

	return updated, nil
}
