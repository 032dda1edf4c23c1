package domain

import (
	"time"

	"github.com/clearmark/clearmark/internal/domain/registry"
)

// Bookkeeping field names a ResultRow adds on top of the opaque registry
// fields.
const (
	FieldSearchID      = "searchId"
	FieldIndexNo       = "indexNo"
	FieldBaseTrademark = "baseTrademark"
	FieldProcessedAt   = "processedAt"
	FieldEvaluation    = "evaluation"
)

// ResultRow is the persisted form of one deduplicated registry item,
// annotated with run bookkeeping. Rows are append-only; only the
// evaluation slot is filled later by the review path.
type ResultRow struct {
	searchID      int64
	indexNo       int
	baseTrademark string
	processedAt   time.Time
	evaluation    string
	item          registry.Item
}

// NewResultRow annotates a registry item for persistence. indexNo is the
// 1-based sequence position within the run. The evaluation slot starts
// empty for the downstream consumer.
func NewResultRow(
	searchID int64, indexNo int, baseTrademark string,
	processedAt time.Time, item registry.Item,
) ResultRow {
	return ResultRow{
		searchID:      searchID,
		indexNo:       indexNo,
		baseTrademark: baseTrademark,
		processedAt:   processedAt.UTC(),
		item:          item,
	}
}

// ReconstructResultRow rebuilds a row from storage.
func ReconstructResultRow(
	searchID int64, indexNo int, baseTrademark string,
	processedAt time.Time, evaluation string, item registry.Item,
) ResultRow {
	return ResultRow{
		searchID:      searchID,
		indexNo:       indexNo,
		baseTrademark: baseTrademark,
		processedAt:   processedAt,
		evaluation:    evaluation,
		item:          item,
	}
}

// SearchID returns the owning request identifier.
func (r ResultRow) SearchID() int64 { return r.searchID }

// IndexNo returns the 1-based sequence position within the run.
func (r ResultRow) IndexNo() int { return r.indexNo }

// BaseTrademark returns the base trademark of the owning request.
func (r ResultRow) BaseTrademark() string { return r.baseTrademark }

// ProcessedAt returns the run timestamp stamped on every row.
func (r ResultRow) ProcessedAt() time.Time { return r.processedAt }

// Evaluation returns the evaluation slot, empty until reviewed.
func (r ResultRow) Evaluation() string { return r.evaluation }

// Item returns the underlying registry record.
func (r ResultRow) Item() registry.Item { return r.item }

// ApplicationNumber returns the natural identifier of the underlying item.
func (r ResultRow) ApplicationNumber() string { return r.item.ApplicationNumber() }
