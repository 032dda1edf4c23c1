package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/query"
	"github.com/clearmark/clearmark/internal/domain/registry"
)

type mockRequestStore struct {
	findPending  func(ctx context.Context, id int64) (domain.SearchRequest, error)
	markConsumed func(ctx context.Context, id int64, processedAt time.Time) error
	consumedAt   time.Time
	consumedID   int64
}

func (m *mockRequestStore) FindPending(ctx context.Context, id int64) (domain.SearchRequest, error) {
	return m.findPending(ctx, id)
}

func (m *mockRequestStore) MarkConsumed(ctx context.Context, id int64, processedAt time.Time) error {
	m.consumedID = id
	m.consumedAt = processedAt
	if m.markConsumed != nil {
		return m.markConsumed(ctx, id, processedAt)
	}
	return nil
}

type mockResultStore struct {
	append   func(ctx context.Context, rows []domain.ResultRow) error
	appended []domain.ResultRow
}

func (m *mockResultStore) Append(ctx context.Context, rows []domain.ResultRow) error {
	m.appended = rows
	if m.append != nil {
		return m.append(ctx, rows)
	}
	return nil
}

func pendingRequest(t *testing.T, id int64, base, queryText string) domain.SearchRequest {
	t.Helper()
	req, err := domain.NewSearchRequest(id, base, queryText, time.Now())
	if err != nil {
		t.Fatalf("NewSearchRequest: %v", err)
	}
	return req
}

func newTestService(t *testing.T, requests RequestStore, results ResultStore, reg Registry) *Service {
	t.Helper()
	f, err := NewFetcher(reg, 2, time.Second, nil)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	t.Cleanup(f.Release)

	svc := New(requests, results, f, query.NewParser())
	svc.now = func() time.Time {
		return time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRun_EndToEnd(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, id int64) (domain.SearchRequest, error) {
			return pendingRequest(t, id, "NOVA", "TN=[NOVA]*TC=[09+42]*SC=[G1]"), nil
		},
	}
	results := &mockResultStore{}
	reg := &stubRegistry{search: func(_ context.Context, combo query.Combination) ([]registry.Item, error) {
		switch combo.Classification {
		case "09":
			return []registry.Item{
				item(map[string]string{"applicationNumber": "40-100", "title": "NOVA"}),
				item(map[string]string{"applicationNumber": "40-200", "title": "NOVA PLUS"}),
			}, nil
		case "42":
			return []registry.Item{
				item(map[string]string{"applicationNumber": "40-100", "title": "NOVA"}),
			}, nil
		}
		return nil, nil
	}}

	svc := newTestService(t, requests, results, reg)

	outcome, err := svc.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.SearchID != 7 {
		t.Errorf("SearchID = %d, want 7", outcome.SearchID)
	}
	if len(outcome.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 after dedup", len(outcome.Rows))
	}
	if outcome.Rows[0].IndexNo() != 1 || outcome.Rows[1].IndexNo() != 2 {
		t.Errorf("index numbers = %d, %d; want 1, 2",
			outcome.Rows[0].IndexNo(), outcome.Rows[1].IndexNo())
	}
	if outcome.Rows[0].BaseTrademark() != "NOVA" {
		t.Errorf("baseTrademark = %q, want NOVA", outcome.Rows[0].BaseTrademark())
	}

	if len(results.appended) != 2 {
		t.Fatalf("appended %d rows, want 2", len(results.appended))
	}
	if requests.consumedID != 7 {
		t.Errorf("consumed id = %d, want 7", requests.consumedID)
	}
	if !requests.consumedAt.Equal(outcome.ProcessedAt) {
		t.Errorf("consumed timestamp %v differs from run timestamp %v",
			requests.consumedAt, outcome.ProcessedAt)
	}
}

func TestRun_NotPendingShortCircuits(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, _ int64) (domain.SearchRequest, error) {
			return domain.SearchRequest{}, domain.ErrRequestNotPending
		},
	}
	results := &mockResultStore{}
	reg := &stubRegistry{search: func(_ context.Context, _ query.Combination) ([]registry.Item, error) {
		t.Fatal("registry must not be called for a consumed request")
		return nil, nil
	}}

	svc := newTestService(t, requests, results, reg)

	_, err := svc.Run(context.Background(), 7)
	if !errors.Is(err, domain.ErrRequestNotPending) {
		t.Fatalf("got %v, want ErrRequestNotPending", err)
	}
	if results.appended != nil {
		t.Error("no rows may be written for a consumed request")
	}
}

func TestRun_NotFoundShortCircuits(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, _ int64) (domain.SearchRequest, error) {
			return domain.SearchRequest{}, domain.ErrRequestNotFound
		},
	}
	svc := newTestService(t, requests, &mockResultStore{}, &stubRegistry{
		search: func(_ context.Context, _ query.Combination) ([]registry.Item, error) { return nil, nil },
	})

	_, err := svc.Run(context.Background(), 99)
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("got %v, want ErrRequestNotFound", err)
	}
}

func TestRun_UnparsableQueryConsumesWithZeroRows(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, id int64) (domain.SearchRequest, error) {
			return pendingRequest(t, id, "NOVA", "garbage without clauses"), nil
		},
	}
	results := &mockResultStore{}
	reg := &stubRegistry{search: func(_ context.Context, _ query.Combination) ([]registry.Item, error) {
		t.Fatal("zero combinations must produce zero registry calls")
		return nil, nil
	}}

	svc := newTestService(t, requests, results, reg)

	outcome, err := svc.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcome.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(outcome.Rows))
	}
	if requests.consumedID != 3 {
		t.Error("request must still transition to consumed")
	}
}

func TestRun_PartialUpstreamFailureStillCompletes(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, id int64) (domain.SearchRequest, error) {
			return pendingRequest(t, id, "NOVA", "TN=[NOVA]*TC=[09+42]*SC=[G1]"), nil
		},
	}
	results := &mockResultStore{}
	reg := &stubRegistry{search: func(_ context.Context, combo query.Combination) ([]registry.Item, error) {
		if combo.Classification == "42" {
			return nil, errors.New("upstream timeout")
		}
		return []registry.Item{item(map[string]string{"applicationNumber": "40-100"})}, nil
	}}

	svc := newTestService(t, requests, results, reg)

	outcome, err := svc.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcome.Rows) != 1 {
		t.Errorf("got %d rows, want 1 from the surviving combination", len(outcome.Rows))
	}
	if requests.consumedID != 5 {
		t.Error("request must transition to consumed despite a partial failure")
	}
}

func TestRun_AppendFailureKeepsRequestPending(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, id int64) (domain.SearchRequest, error) {
			return pendingRequest(t, id, "NOVA", "TN=[NOVA]*TC=[09]*SC=[G1]"), nil
		},
	}
	results := &mockResultStore{
		append: func(_ context.Context, _ []domain.ResultRow) error {
			return errors.New("store write refused")
		},
	}
	reg := &stubRegistry{search: func(_ context.Context, _ query.Combination) ([]registry.Item, error) {
		return []registry.Item{item(map[string]string{"applicationNumber": "40-100"})}, nil
	}}

	svc := newTestService(t, requests, results, reg)

	_, err := svc.Run(context.Background(), 4)
	if !errors.Is(err, domain.ErrResultPersist) {
		t.Fatalf("got %v, want ErrResultPersist", err)
	}
	if requests.consumedID != 0 {
		t.Error("status must not flip when the result write fails")
	}
}

func TestRun_AllRowsShareRunTimestamp(t *testing.T) {
	requests := &mockRequestStore{
		findPending: func(_ context.Context, id int64) (domain.SearchRequest, error) {
			return pendingRequest(t, id, "NOVA", "TN=[NOVA+NOVAX]*TC=[09]*SC=[G1]"), nil
		},
	}
	results := &mockResultStore{}
	reg := &stubRegistry{search: func(_ context.Context, combo query.Combination) ([]registry.Item, error) {
		return []registry.Item{item(map[string]string{"applicationNumber": combo.Name})}, nil
	}}

	svc := newTestService(t, requests, results, reg)

	outcome, err := svc.Run(context.Background(), 8)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, row := range outcome.Rows {
		if !row.ProcessedAt().Equal(outcome.ProcessedAt) {
			t.Errorf("row %d timestamp %v differs from run timestamp %v",
				i, row.ProcessedAt(), outcome.ProcessedAt)
		}
	}
}
