package result

import (
	"fmt"
	"strconv"
	"time"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/registry"
)

// Bookkeeping field names of a result row. Registry fields are stored
// alongside them untouched; anything not listed here is treated as an
// opaque registry field on the way back out.
const (
	fieldSearchID      = "search_id"
	fieldIndexNo       = "index_no"
	fieldBaseTrademark = "base_trademark"
	fieldProcessedAt   = "processed_at"
	fieldEvaluation    = "evaluation"
)

var bookkeepingFields = map[string]struct{}{
	fieldSearchID:      {},
	fieldIndexNo:       {},
	fieldBaseTrademark: {},
	fieldProcessedAt:   {},
	fieldEvaluation:    {},
}

// buildRowFields flattens a domain ResultRow into a store row.
func buildRowFields(row domain.ResultRow) map[string]string {
	item := row.Item().Fields()
	fields := make(map[string]string, len(item)+5)
	for k, v := range item {
		fields[k] = v
	}
	fields[fieldSearchID] = strconv.FormatInt(row.SearchID(), 10)
	fields[fieldIndexNo] = strconv.Itoa(row.IndexNo())
	fields[fieldBaseTrademark] = row.BaseTrademark()
	fields[fieldProcessedAt] = row.ProcessedAt().UTC().Format(time.RFC3339)
	fields[fieldEvaluation] = row.Evaluation()
	return fields
}

// parseRowFields rebuilds a domain ResultRow from a store row.
func parseRowFields(fields map[string]string) (domain.ResultRow, error) {
	searchID, err := strconv.ParseInt(fields[fieldSearchID], 10, 64)
	if err != nil {
		return domain.ResultRow{}, fmt.Errorf("bad search_id %q: %w", fields[fieldSearchID], err)
	}
	indexNo, err := strconv.Atoi(fields[fieldIndexNo])
	if err != nil {
		return domain.ResultRow{}, fmt.Errorf("bad index_no %q: %w", fields[fieldIndexNo], err)
	}

	var processedAt time.Time
	if fields[fieldProcessedAt] != "" {
		processedAt, err = time.Parse(time.RFC3339, fields[fieldProcessedAt])
		if err != nil {
			return domain.ResultRow{}, fmt.Errorf("bad processed_at: %w", err)
		}
	}

	itemFields := make(map[string]string, len(fields))
	for k, v := range fields {
		if _, bookkeeping := bookkeepingFields[k]; !bookkeeping {
			itemFields[k] = v
		}
	}

	return domain.ReconstructResultRow(
		searchID, indexNo, fields[fieldBaseTrademark],
		processedAt, fields[fieldEvaluation],
		registry.NewItem(itemFields),
	), nil
}
