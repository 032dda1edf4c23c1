package chi

import "time"

// Identifiers serialize as strings so JSON consumers never lose
// precision on large ids.

type registerRequest struct {
	BaseTrademark string `json:"baseTrademark"`
	QueryText     string `json:"queryText"`
}

type searchRequestDTO struct {
	SearchID      string     `json:"searchId"`
	BaseTrademark string     `json:"baseTrademark"`
	QueryText     string     `json:"queryText"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
}

type pendingListResponse struct {
	Items []searchRequestDTO `json:"items"`
	Total int                `json:"total"`
}

type runResponse struct {
	SearchID    string         `json:"searchId"`
	Results     []resultRowDTO `json:"results"`
	ResultCount int            `json:"resultCount"`
	ProcessedAt time.Time      `json:"processedAt"`
}

// resultRowDTO is the flattened row object: opaque registry fields plus
// run bookkeeping keys.
type resultRowDTO map[string]any

type resultsResponse struct {
	Request searchRequestDTO `json:"request"`
	Results []resultRowDTO   `json:"results"`
	Total   int              `json:"total"`
}

type evaluationDTO struct {
	ApplicationNumber string `json:"applicationNumber"`
	Evaluation        string `json:"evaluation"`
}

type evaluateRequest struct {
	Evaluations []evaluationDTO `json:"evaluations"`
}

type evaluateResponse struct {
	Updated int `json:"updated"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
