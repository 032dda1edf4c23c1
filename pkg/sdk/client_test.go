package clearmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/registry"
	reviewuc "github.com/clearmark/clearmark/internal/usecase/review"
	searchuc "github.com/clearmark/clearmark/internal/usecase/search"
)

type stubIntake struct {
	register    func(ctx context.Context, baseTrademark, queryText string) (domain.SearchRequest, error)
	listPending func(ctx context.Context) ([]domain.SearchRequest, error)
}

func (s *stubIntake) Register(ctx context.Context, baseTrademark, queryText string) (domain.SearchRequest, error) {
	return s.register(ctx, baseTrademark, queryText)
}

func (s *stubIntake) ListPending(ctx context.Context) ([]domain.SearchRequest, error) {
	return s.listPending(ctx)
}

type stubPipeline struct {
	run func(ctx context.Context, searchID int64) (searchuc.Outcome, error)
}

func (s *stubPipeline) Run(ctx context.Context, searchID int64) (searchuc.Outcome, error) {
	return s.run(ctx, searchID)
}

type stubReview struct {
	results  func(ctx context.Context, searchID int64) (reviewuc.ResultSet, error)
	evaluate func(ctx context.Context, searchID int64, evals []reviewuc.Evaluation) (int, error)
}

func (s *stubReview) Results(ctx context.Context, searchID int64) (reviewuc.ResultSet, error) {
	return s.results(ctx, searchID)
}

func (s *stubReview) Evaluate(ctx context.Context, searchID int64, evals []reviewuc.Evaluation) (int, error) {
	return s.evaluate(ctx, searchID, evals)
}

func TestNew_RequiresAddrs(t *testing.T) {
	_, err := New(context.Background(), WithRegistry("http://registry.example", "key"))
	if err == nil {
		t.Fatal("expected error without database address")
	}
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(context.Background(), WithRedis([]string{"localhost:6379"}, ""))
	if err == nil {
		t.Fatal("expected error without registry endpoint")
	}
}

func TestRegister(t *testing.T) {
	c := &Client{intake: &stubIntake{
		register: func(_ context.Context, base, queryText string) (domain.SearchRequest, error) {
			return domain.NewSearchRequest(9, base, queryText, time.Now())
		},
	}}

	s, err := c.Register(context.Background(), "NOVA", "TN=[NOVA]*TC=[09]*SC=[G1]")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.ID != 9 || s.Status != "pending" {
		t.Errorf("unexpected search: %+v", s)
	}
}

func TestRun(t *testing.T) {
	processedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	c := &Client{pipeline: &stubPipeline{
		run: func(_ context.Context, searchID int64) (searchuc.Outcome, error) {
			item := registry.NewItem(map[string]string{"applicationNumber": "40-100"})
			return searchuc.Outcome{
				SearchID:    searchID,
				ProcessedAt: processedAt,
				Rows: []domain.ResultRow{
					domain.NewResultRow(searchID, 1, "NOVA", processedAt, item),
				},
			}, nil
		},
	}}

	summary, err := c.Run(context.Background(), 9)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SearchID != 9 || len(summary.Results) != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Results[0].ApplicationNumber != "40-100" {
		t.Errorf("applicationNumber = %q, want 40-100", summary.Results[0].ApplicationNumber)
	}
	if !summary.ProcessedAt.Equal(processedAt) {
		t.Errorf("processedAt = %v", summary.ProcessedAt)
	}
}

func TestRun_SentinelsPassThrough(t *testing.T) {
	c := &Client{pipeline: &stubPipeline{
		run: func(_ context.Context, _ int64) (searchuc.Outcome, error) {
			return searchuc.Outcome{}, domain.ErrRequestNotPending
		},
	}}

	_, err := c.Run(context.Background(), 9)
	if !errors.Is(err, domain.ErrRequestNotPending) {
		t.Fatalf("got %v, want ErrRequestNotPending", err)
	}
}

func TestResults(t *testing.T) {
	processedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	c := &Client{review: &stubReview{
		results: func(_ context.Context, searchID int64) (reviewuc.ResultSet, error) {
			item := registry.NewItem(map[string]string{"applicationNumber": "40-100", "title": "NOVA"})
			return reviewuc.ResultSet{
				Request: domain.ReconstructSearchRequest(
					searchID, "NOVA", "TN=[NOVA]", domain.StatusConsumed,
					processedAt.Add(-time.Hour), processedAt),
				Rows: []domain.ResultRow{
					domain.ReconstructResultRow(searchID, 1, "NOVA", processedAt, "conflict", item),
				},
			}, nil
		},
	}}

	s, rows, err := c.Results(context.Background(), 9)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if s.Status != "consumed" {
		t.Errorf("status = %q", s.Status)
	}
	if len(rows) != 1 || rows[0].ApplicationNumber != "40-100" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[0].Evaluation != "conflict" {
		t.Errorf("evaluation = %q", rows[0].Evaluation)
	}
	if rows[0].Fields["title"] != "NOVA" {
		t.Errorf("fields = %v", rows[0].Fields)
	}
}

func TestEvaluate(t *testing.T) {
	var got []reviewuc.Evaluation
	c := &Client{review: &stubReview{
		evaluate: func(_ context.Context, _ int64, evals []reviewuc.Evaluation) (int, error) {
			got = evals
			return 2, nil
		},
	}}

	updated, err := c.Evaluate(context.Background(), 9, []Evaluation{
		{ApplicationNumber: "40-100", Verdict: "conflict"},
		{ApplicationNumber: "40-200", Verdict: "clear"},
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	if len(got) != 2 || got[0].ApplicationNumber != "40-100" || got[1].Verdict != "clear" {
		t.Errorf("forwarded evaluations: %+v", got)
	}
}
