package request

import (
	"fmt"
	"strconv"
	"time"

	"github.com/clearmark/clearmark/internal/domain"
)

// Hash field names of a request row.
const (
	fieldSearchID      = "search_id"
	fieldBaseTrademark = "base_trademark"
	fieldQuery         = "query"
	fieldStatus        = "status"
	fieldCreatedAt     = "created_at"
	fieldProcessedAt   = "processed_at"
)

// buildRequestFields converts a domain SearchRequest into a flat row.
func buildRequestFields(req domain.SearchRequest) map[string]string {
	fields := map[string]string{
		fieldSearchID:      strconv.FormatInt(req.ID(), 10),
		fieldBaseTrademark: req.BaseTrademark(),
		fieldQuery:         req.Query(),
		fieldStatus:        string(req.Status()),
		fieldCreatedAt:     req.CreatedAt().UTC().Format(time.RFC3339),
		fieldProcessedAt:   "",
	}
	if !req.ProcessedAt().IsZero() {
		fields[fieldProcessedAt] = req.ProcessedAt().UTC().Format(time.RFC3339)
	}
	return fields
}

// parseRequestFields converts a flat row back into a domain SearchRequest.
func parseRequestFields(fields map[string]string) (domain.SearchRequest, error) {
	id, err := strconv.ParseInt(fields[fieldSearchID], 10, 64)
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("bad search_id %q: %w", fields[fieldSearchID], err)
	}

	status, err := domain.ParseStatus(fields[fieldStatus])
	if err != nil {
		return domain.SearchRequest{}, err
	}

	createdAt, err := parseTime(fields[fieldCreatedAt])
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("bad created_at: %w", err)
	}

	var processedAt time.Time
	if fields[fieldProcessedAt] != "" {
		processedAt, err = parseTime(fields[fieldProcessedAt])
		if err != nil {
			return domain.SearchRequest{}, fmt.Errorf("bad processed_at: %w", err)
		}
	}

	return domain.ReconstructSearchRequest(
		id, fields[fieldBaseTrademark], fields[fieldQuery],
		status, createdAt, processedAt,
	), nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err //nolint:wrapcheck // callers add field context
	}
	return t, nil
}
