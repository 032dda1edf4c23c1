package review

import (
	"context"

	"github.com/clearmark/clearmark/internal/domain"
)

// RequestReader reads requests for existence checks.
type RequestReader interface {
	Get(ctx context.Context, id int64) (domain.SearchRequest, error)
}

// ResultStore reads and annotates persisted result rows.
type ResultStore interface {
	ListBySearch(ctx context.Context, searchID int64) ([]domain.ResultRow, error)
	SetEvaluation(ctx context.Context, searchID int64, applicationNumber, evaluation string) (int, error)
}
