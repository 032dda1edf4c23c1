// Package kipris implements the KIPRIS advanced trademark search client.
package kipris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/clearmark/clearmark/internal/domain"
	"github.com/clearmark/clearmark/internal/domain/query"
	"github.com/clearmark/clearmark/internal/domain/registry"
	"github.com/clearmark/clearmark/internal/metrics"
)

const searchPath = "/openapi/trademark/getAdvancedSearch"

// inclusionFlags is the fixed, exhaustive set of record-category switches
// the service requires on every call. The pipeline always searches the
// whole registry, so all of them are sent as "true".
var inclusionFlags = []string{
	"application", "registration", "refused", "expired", "withdrawal",
	"publication", "cancel", "abandonment",
	"trademark", "serviceMark", "trademarkServiceMark", "businessEmblem",
	"collectiveMark", "internationalMark",
	"character", "figure", "compositionCharacter", "figureComposition",
	"sound", "fragrance", "color", "dimension", "colorMixed",
	"hologram", "motion", "visual", "invisible",
}

// Client calls the KIPRIS registry search service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
	sortSpec   string
	logger     *zap.Logger
}

// Config holds the registry client settings.
type Config struct {
	BaseURL     string
	APIKey      string
	PageSize    int
	SortSpec    string
	CallTimeout time.Duration
	Logger      *zap.Logger
}

// NewClient creates a registry search client. CallTimeout bounds every
// call so a stalled one cannot hold a fetch-pool slot indefinitely.
func NewClient(cfg *Config) *Client {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   cfg.PageSize,
		sortSpec:   cfg.SortSpec,
		logger:     logger,
	}
}

// Search issues one registry call for the given combination and
// normalizes the semi-structured response into a flat item list.
// An empty list is a valid outcome ("no match").
func (c *Client) Search(ctx context.Context, combo query.Combination) ([]registry.Item, error) {
	u, err := c.buildURL(combo)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRegistryCall("error", start)
		return nil, fmt.Errorf("registry call (%s/%s/%s): %w: %w",
			combo.Name, combo.Classification, combo.SimilarityCode,
			domain.ErrRegistryUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		recordRegistryCall("error", start)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry status %d: %s: %w",
			resp.StatusCode, string(body), domain.ErrRegistryUnavailable)
	}

	items, err := decodeItems(resp.Body)
	if err != nil {
		recordRegistryCall("error", start)
		return nil, fmt.Errorf("decode registry response: %w", err)
	}

	recordRegistryCall("success", start)
	metrics.RegistryItemsTotal.Add(float64(len(items)))

	return items, nil
}

// recordRegistryCall tracks one registry round-trip. Timed-out and
// rejected calls are observed too; tail latency lives on the error path.
func recordRegistryCall(status string, start time.Time) {
	metrics.RegistryRequestsTotal.WithLabelValues(status).Inc()
	metrics.RegistryRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// HealthCheck verifies that the registry endpoint answers at all. A
// rejected (non-5xx) response still counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("registry returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) buildURL(combo query.Combination) (string, error) {
	base, err := url.Parse(c.baseURL + searchPath)
	if err != nil {
		return "", fmt.Errorf("parse registry url: %w", err)
	}

	params := url.Values{}
	params.Set("trademarkName", combo.Name)
	params.Set("classification", combo.Classification)
	params.Set("similarityCode", combo.SimilarityCode)
	for _, flag := range inclusionFlags {
		params.Set(flag, "true")
	}
	params.Set("numOfRows", strconv.Itoa(c.pageSize))
	params.Set("pageNo", "1")
	params.Set("sortSpec", c.sortSpec)
	params.Set("descSort", "true")
	params.Set("ServiceKey", c.apiKey)

	base.RawQuery = params.Encode()
	return base.String(), nil
}

// searchEnvelope mirrors the nesting of the service response; only the
// items node is interpreted.
type searchEnvelope struct {
	Response struct {
		Body struct {
			Items struct {
				Item json.RawMessage `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// decodeItems normalizes the items node, which arrives as a single
// object, an array, or nothing at all for "no match".
func decodeItems(r io.Reader) ([]registry.Item, error) {
	var env searchEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("malformed body: %w", err)
	}

	raw := env.Response.Body.Items.Item
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var many []map[string]any
	if err := json.Unmarshal(raw, &many); err == nil {
		items := make([]registry.Item, 0, len(many))
		for _, payload := range many {
			items = append(items, registry.FromPayload(payload))
		}
		return items, nil
	}

	var one map[string]any
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("items node is neither object nor array: %w", err)
	}
	return []registry.Item{registry.FromPayload(one)}, nil
}
