package intake

import (
	"context"

	"github.com/clearmark/clearmark/internal/domain"
)

// RequestStore defines the storage contract for request registration.
type RequestStore interface {
	NextID(ctx context.Context) (int64, error)
	Save(ctx context.Context, req domain.SearchRequest) error
	ListPending(ctx context.Context) ([]domain.SearchRequest, error)
}
