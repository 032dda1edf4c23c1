package search

import (
	"context"
	"time"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/query"
	"github.com/clearmark/clearmark/internal/domain/registry"
)

// RequestStore defines the request lifecycle contract for pipeline runs.
type RequestStore interface {
	FindPending(ctx context.Context, id int64) (domain.SearchRequest, error)
	MarkConsumed(ctx context.Context, id int64, processedAt time.Time) error
}

// ResultStore persists the rows produced by a run.
type ResultStore interface {
	Append(ctx context.Context, rows []domain.ResultRow) error
}

// Registry performs one trademark registry lookup per combination.
type Registry interface {
	Search(ctx context.Context, combo query.Combination) ([]registry.Item, error)
}
