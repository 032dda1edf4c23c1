// Package intake handles search request registration and the pending
// queue listing.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/logger"
)

// Service registers search requests and lists the pending backlog.
type Service struct {
	requests RequestStore
	now      func() time.Time
}

// New creates an intake service.
func New(requests RequestStore) *Service {
	return &Service{requests: requests, now: time.Now}
}

// Register validates and stores a new pending request, assigning the
// next search identifier.
func (s *Service) Register(ctx context.Context, baseTrademark, queryText string) (domain.SearchRequest, error) {
	if strings.TrimSpace(baseTrademark) == "" {
		return domain.SearchRequest{}, fmt.Errorf("%w: baseTrademark is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(queryText) == "" {
		return domain.SearchRequest{}, fmt.Errorf("%w: queryText is required", domain.ErrInvalidInput)
	}

	id, err := s.requests.NextID(ctx)
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("assign search id: %w", err)
	}

	req, err := domain.NewSearchRequest(id, baseTrademark, queryText, s.now())
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.requests.Save(ctx, req); err != nil {
		return domain.SearchRequest{}, fmt.Errorf("save request: %w", err)
	}

	logger.FromContext(ctx).Info("search request registered",
		zap.Int64("searchId", req.ID()),
		zap.String("baseTrademark", req.BaseTrademark()))

	return req, nil
}

// ListPending returns every request still awaiting a run, ordered by id.
func (s *Service) ListPending(ctx context.Context) ([]domain.SearchRequest, error) {
	pending, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return pending, nil
}
