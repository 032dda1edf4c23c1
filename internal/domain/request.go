package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a search request.
type Status string

const (
	// StatusPending marks a request that has not been executed yet.
	StatusPending Status = "pending"
	// StatusConsumed marks a request whose pipeline run reached the
	// terminal persistence step.
	StatusConsumed Status = "consumed"
)

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusPending:
		return StatusPending, nil
	case StatusConsumed:
		return StatusConsumed, nil
	default:
		return "", fmt.Errorf("unknown request status %q", s)
	}
}

// SearchRequest is one registered trademark-search request. It is mutated
// exactly once, transitioning pending -> consumed when the pipeline runs.
type SearchRequest struct {
	id            int64
	baseTrademark string
	query         string
	status        Status
	createdAt     time.Time
	processedAt   time.Time // zero until consumed
}

// NewSearchRequest creates a pending request.
func NewSearchRequest(id int64, baseTrademark, query string, createdAt time.Time) (SearchRequest, error) {
	if id <= 0 {
		return SearchRequest{}, fmt.Errorf("search id must be positive, got %d", id)
	}
	if strings.TrimSpace(query) == "" {
		return SearchRequest{}, fmt.Errorf("query text is required")
	}
	return SearchRequest{
		id:            id,
		baseTrademark: baseTrademark,
		query:         query,
		status:        StatusPending,
		createdAt:     createdAt.UTC(),
	}, nil
}

// ReconstructSearchRequest rebuilds a request from storage without validation.
func ReconstructSearchRequest(
	id int64, baseTrademark, query string,
	status Status, createdAt, processedAt time.Time,
) SearchRequest {
	return SearchRequest{
		id:            id,
		baseTrademark: baseTrademark,
		query:         query,
		status:        status,
		createdAt:     createdAt,
		processedAt:   processedAt,
	}
}

// ID returns the caller-visible search identifier.
func (r SearchRequest) ID() int64 { return r.id }

// BaseTrademark returns the informational base trademark text.
func (r SearchRequest) BaseTrademark() string { return r.baseTrademark }

// Query returns the raw mini-language query text.
func (r SearchRequest) Query() string { return r.query }

// Status returns the lifecycle state.
func (r SearchRequest) Status() Status { return r.status }

// IsPending reports whether the request is still awaiting execution.
func (r SearchRequest) IsPending() bool { return r.status == StatusPending }

// CreatedAt returns the registration timestamp.
func (r SearchRequest) CreatedAt() time.Time { return r.createdAt }

// ProcessedAt returns the consumption timestamp (zero while pending).
func (r SearchRequest) ProcessedAt() time.Time { return r.processedAt }
