// Package request persists search requests as store rows keyed by
// searchId.
package request

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/clearmark/clearmark/internal/db"
	"github.com/clearmark/clearmark/internal/domain"
)

// store is the consumer interface for request rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Repo implements the request-store contract of the usecase layer.
type Repo struct {
	store  store
	prefix string
}

// New creates a request repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// NextID atomically assigns the next search identifier.
func (r *Repo) NextID(ctx context.Context) (int64, error) {
	id, err := r.store.Incr(ctx, r.seqKey())
	if err != nil {
		return 0, fmt.Errorf("next search id: %w", err)
	}
	return id, nil
}

// Save writes a new request row. Counter ids never repeat, so an
// occupied key means the sequence is corrupt and the write must not
// clobber the existing row.
func (r *Repo) Save(ctx context.Context, req domain.SearchRequest) error {
	key := r.requestKey(req.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("save request %d: %w", req.ID(), err)
	}
	if exists {
		return fmt.Errorf("save request %d: row already exists", req.ID())
	}
	if err := r.store.HSet(ctx, key, buildRequestFields(req)); err != nil {
		return fmt.Errorf("save request %d: %w", req.ID(), err)
	}
	return nil
}

// Get returns the request row for searchID.
func (r *Repo) Get(ctx context.Context, searchID int64) (domain.SearchRequest, error) {
	fields, err := r.store.HGetAll(ctx, r.requestKey(searchID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.SearchRequest{}, domain.ErrRequestNotFound
		}
		return domain.SearchRequest{}, fmt.Errorf("get request %d: %w", searchID, err)
	}
	if len(fields) == 0 {
		return domain.SearchRequest{}, domain.ErrRequestNotFound
	}
	req, err := parseRequestFields(fields)
	if err != nil {
		return domain.SearchRequest{}, fmt.Errorf("parse request %d: %w", searchID, err)
	}
	return req, nil
}

// FindPending returns the request only if it exists AND is still pending.
func (r *Repo) FindPending(ctx context.Context, searchID int64) (domain.SearchRequest, error) {
	req, err := r.Get(ctx, searchID)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	if !req.IsPending() {
		return domain.SearchRequest{}, domain.ErrRequestNotPending
	}
	return req, nil
}

// ListPending returns all pending requests ordered by searchId.
func (r *Repo) ListPending(ctx context.Context) ([]domain.SearchRequest, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"request:*")
	if err != nil {
		return nil, fmt.Errorf("scan requests: %w", err)
	}

	rowKeys := keys[:0]
	for _, k := range keys {
		if k != r.seqKey() {
			rowKeys = append(rowKeys, k)
		}
	}
	if len(rowKeys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, rowKeys)
	if err != nil {
		return nil, fmt.Errorf("load requests: %w", err)
	}

	var pending []domain.SearchRequest
	for _, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		req, err := parseRequestFields(fields)
		if err != nil {
			// Skip rows that do not parse; a malformed row must not hide
			// the rest of the table.
			continue
		}
		if req.IsPending() {
			pending = append(pending, req)
		}
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].ID() < pending[j].ID() })
	return pending, nil
}

// MarkConsumed performs the explicit read-then-write status transition:
// it re-reads the row, verifies it is still pending, and updates only the
// status and processed_at columns.
func (r *Repo) MarkConsumed(ctx context.Context, searchID int64, processedAt time.Time) error {
	req, err := r.Get(ctx, searchID)
	if err != nil {
		return err
	}
	if !req.IsPending() {
		return domain.ErrRequestNotPending
	}

	update := map[string]string{
		fieldStatus:      string(domain.StatusConsumed),
		fieldProcessedAt: processedAt.UTC().Format(time.RFC3339),
	}
	if err := r.store.HSet(ctx, r.requestKey(searchID), update); err != nil {
		return fmt.Errorf("mark consumed %d: %w", searchID, err)
	}
	return nil
}

func (r *Repo) requestKey(searchID int64) string {
	return fmt.Sprintf("%srequest:%d", r.prefix, searchID)
}

func (r *Repo) seqKey() string {
	return r.prefix + "request:seq"
}
