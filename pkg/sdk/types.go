package clearmark

import "time"

// Search is one registered search request.
type Search struct {
	ID            int64
	BaseTrademark string
	QueryText     string
	Status        string
	CreatedAt     time.Time
	ProcessedAt   time.Time // zero while pending
}

// RunSummary reports a completed pipeline run, including the merged
// registry matches the run produced.
type RunSummary struct {
	SearchID    int64
	Results     []Result
	ProcessedAt time.Time
}

// Result is one persisted registry match.
type Result struct {
	IndexNo           int
	ApplicationNumber string
	Evaluation        string
	ProcessedAt       time.Time
	Fields            map[string]string
}

// Evaluation is one verdict to record against a result row.
type Evaluation struct {
	ApplicationNumber string
	Verdict           string
}
