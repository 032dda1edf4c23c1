// Package clearmark is the embedded Go client: it wires the storage and
// registry layers directly, without going through the HTTP API.
package clearmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clearmark/clearmark/internal/db"
	dbRedis "github.com/clearmark/clearmark/internal/db/redis"
	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/query"
	requestrepo "github.com/clearmark/clearmark/internal/repository/request"
	resultrepo "github.com/clearmark/clearmark/internal/repository/result"
	"github.com/clearmark/clearmark/internal/transport/kipris"
	intakeuc "github.com/clearmark/clearmark/internal/usecase/intake"
	reviewuc "github.com/clearmark/clearmark/internal/usecase/review"
	searchuc "github.com/clearmark/clearmark/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the services.
type intakeUseCase interface {
	Register(ctx context.Context, baseTrademark, queryText string) (domain.SearchRequest, error)
	ListPending(ctx context.Context) ([]domain.SearchRequest, error)
}

type pipelineUseCase interface {
	Run(ctx context.Context, searchID int64) (searchuc.Outcome, error)
}

type reviewUseCase interface {
	Results(ctx context.Context, searchID int64) (reviewuc.ResultSet, error)
	Evaluate(ctx context.Context, searchID int64, evals []reviewuc.Evaluation) (int, error)
}

// Client is the clearmark SDK entry point.
type Client struct {
	store    db.Store
	fetcher  *searchuc.Fetcher
	intake   intakeUseCase
	pipeline pipelineUseCase
	review   reviewUseCase
}

// New creates a clearmark Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("clearmark: database address required (use WithRedis)")
	}
	if cfg.registryBaseURL == "" || cfg.registryAPIKey == "" {
		return nil, errors.New("clearmark: registry endpoint required (use WithRegistry)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("clearmark: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("clearmark: database not ready: %w", err)
	}

	return wireClient(store, cfg)
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	requestRepo := requestrepo.New(store, cfg.keyPrefix)
	resultRepo := resultrepo.New(store, cfg.keyPrefix)

	registry := kipris.NewClient(&kipris.Config{
		BaseURL:     cfg.registryBaseURL,
		APIKey:      cfg.registryAPIKey,
		PageSize:    cfg.pageSize,
		SortSpec:    cfg.sortSpec,
		CallTimeout: cfg.callTimeout,
		Logger:      cfg.logger,
	})

	fetcher, err := searchuc.NewFetcher(registry, cfg.maxConcurrent, cfg.callTimeout, cfg.logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("clearmark: create fetch pool: %w", err)
	}

	return &Client{
		store:    store,
		fetcher:  fetcher,
		intake:   intakeuc.New(requestRepo),
		pipeline: searchuc.New(requestRepo, resultRepo, fetcher, query.NewParser()),
		review:   reviewuc.New(requestRepo, resultRepo),
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.fetcher != nil {
		c.fetcher.Release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Register stores a new pending search request and returns it.
func (c *Client) Register(ctx context.Context, baseTrademark, queryText string) (Search, error) {
	req, err := c.intake.Register(ctx, baseTrademark, queryText)
	if err != nil {
		return Search{}, err
	}
	return searchFromDomain(req), nil
}

// Pending lists requests that have not been run yet, ordered by id.
func (c *Client) Pending(ctx context.Context) ([]Search, error) {
	reqs, err := c.intake.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Search, len(reqs))
	for i, req := range reqs {
		out[i] = searchFromDomain(req)
	}
	return out, nil
}

// Run executes the pipeline for one pending request.
func (c *Client) Run(ctx context.Context, searchID int64) (RunSummary, error) {
	outcome, err := c.pipeline.Run(ctx, searchID)
	if err != nil {
		return RunSummary{}, err
	}
	rows := make([]Result, len(outcome.Rows))
	for i, row := range outcome.Rows {
		rows[i] = resultFromDomain(row)
	}
	return RunSummary{
		SearchID:    outcome.SearchID,
		Results:     rows,
		ProcessedAt: outcome.ProcessedAt,
	}, nil
}

// Results returns the request and the rows its run produced.
func (c *Client) Results(ctx context.Context, searchID int64) (Search, []Result, error) {
	set, err := c.review.Results(ctx, searchID)
	if err != nil {
		return Search{}, nil, err
	}
	rows := make([]Result, len(set.Rows))
	for i, row := range set.Rows {
		rows[i] = resultFromDomain(row)
	}
	return searchFromDomain(set.Request), rows, nil
}

// Evaluate records verdicts against the rows of one run and returns how
// many rows were annotated.
func (c *Client) Evaluate(ctx context.Context, searchID int64, evals []Evaluation) (int, error) {
	in := make([]reviewuc.Evaluation, len(evals))
	for i, e := range evals {
		in[i] = reviewuc.Evaluation{
			ApplicationNumber: e.ApplicationNumber,
			Verdict:           e.Verdict,
		}
	}
	return c.review.Evaluate(ctx, searchID, in)
}

func searchFromDomain(req domain.SearchRequest) Search {
	return Search{
		ID:            req.ID(),
		BaseTrademark: req.BaseTrademark(),
		QueryText:     req.Query(),
		Status:        string(req.Status()),
		CreatedAt:     req.CreatedAt(),
		ProcessedAt:   req.ProcessedAt(),
	}
}

func resultFromDomain(row domain.ResultRow) Result {
	return Result{
		IndexNo:           row.IndexNo(),
		ApplicationNumber: row.ApplicationNumber(),
		Evaluation:        row.Evaluation(),
		ProcessedAt:       row.ProcessedAt(),
		Fields:            row.Item().Fields(),
	}
}
