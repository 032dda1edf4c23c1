// Package result persists deduplicated registry items as append-only
// store rows keyed by (searchId, indexNo).
package result

import (
	"context"
	"fmt"
	"sort"

	"github.com/clearmark/clearmark/internal/db"
	"github.com/clearmark/clearmark/internal/domain"
)

// store is the consumer interface for result rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the result-store contract of the usecase layer.
type Repo struct {
	store  store
	prefix string
}

// New creates a result repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Append writes all rows of one run in a single pipelined batch. This is
// the only write path of the pipeline; rows are never mutated afterwards
// except for the evaluation slot.
func (r *Repo) Append(ctx context.Context, rows []domain.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(rows))
	for i, row := range rows {
		items[i] = db.HashSetItem{
			Key:    r.rowKey(row.SearchID(), row.IndexNo()),
			Fields: buildRowFields(row),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("append %d result rows: %w", len(rows), err)
	}
	return nil
}

// ListBySearch returns all persisted rows of a search ordered by indexNo.
func (r *Repo) ListBySearch(ctx context.Context, searchID int64) ([]domain.ResultRow, error) {
	keys, err := r.store.Scan(ctx, fmt.Sprintf("%sresult:%d:*", r.prefix, searchID))
	if err != nil {
		return nil, fmt.Errorf("scan results %d: %w", searchID, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load results %d: %w", searchID, err)
	}

	rows := make([]domain.ResultRow, 0, len(raw))
	for _, fields := range raw {
		if len(fields) == 0 {
			continue
		}
		row, err := parseRowFields(fields)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].IndexNo() < rows[j].IndexNo() })
	return rows, nil
}

// SetEvaluation fills the evaluation slot of every row of searchID whose
// applicationNumber matches. Returns the number of rows touched.
func (r *Repo) SetEvaluation(ctx context.Context, searchID int64, applicationNumber, evaluation string) (int, error) {
	rows, err := r.ListBySearch(ctx, searchID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, row := range rows {
		if row.ApplicationNumber() != applicationNumber {
			continue
		}
		key := r.rowKey(searchID, row.IndexNo())
		if err := r.store.HSet(ctx, key, map[string]string{fieldEvaluation: evaluation}); err != nil {
			return updated, fmt.Errorf("set evaluation on %s: %w", key, err)
		}
		updated++
	}
	return updated, nil
}

func (r *Repo) rowKey(searchID int64, indexNo int) string {
	return fmt.Sprintf("%sresult:%d:%d", r.prefix, searchID, indexNo)
}
