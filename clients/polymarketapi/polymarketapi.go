package polymarketapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"whalewatch/config"
)

// PolymarketApiClient talks to the Polymarket data API. Endpoint shapes for
// account detail vary across deployments, so the per-wallet fetches probe an
// ordered list of candidate paths and take the first that yields rows.
type PolymarketApiClient struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string

	retries      int
	retryBackoff time.Duration
}

func NewPolymarketApiClient(logger *zap.Logger, cfg *config.Config) *PolymarketApiClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PolymarketApiClient{
		logger: logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:      cfg.Polymarket.DataAPIURL,
		apiKey:       cfg.Polymarket.APIKey,
		retries:      2,
		retryBackoff: 300 * time.Millisecond,
	}
}

// GetRecentTrades fetches the most recent trades across all wallets. Records
// are returned raw; normalization happens downstream.
func (c *PolymarketApiClient) GetRecentTrades(ctx context.Context, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 500 {
		limit = 500
	}

	u, err := c.endpoint("/trades", map[string]string{
		"limit": fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return nil, err
	}

	rows, err := c.getRows(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("get recent trades: %w", err)
	}
	return rows, nil
}

// GetWalletTrades fetches recent trades for one wallet.
func (c *PolymarketApiClient) GetWalletTrades(ctx context.Context, wallet string, limit int) ([]map[string]any, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("wallet is empty")
	}
	if limit <= 0 {
		limit = 200
	}

	u, err := c.endpoint("/trades", map[string]string{
		"user":  wallet,
		"limit": fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return nil, err
	}

	rows, err := c.getRows(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("get wallet trades: %w", err)
	}
	return rows, nil
}

// Probe paths for per-wallet detail. Each list is tried in order; the first
// endpoint returning rows wins. Later candidates exist because upstream
// schemas have drifted, not by preference.
var (
	closedTradePaths = []string{
		"/account/%s/trades?state=closed&limit=1000",
		"/account/%s/fills?closed=true&limit=1000",
		"/trades?address=%s&state=closed&limit=1000",
		"/fills?address=%s&closed=true&limit=1000",
	}
	openPositionPaths = []string{
		"/account/%s/positions",
		"/positions?address=%s",
		"/portfolio?address=%s",
	}
	rollupPaths = []string{
		"/account/%s/stats",
		"/account/%s/performance",
		"/account/%s/pnl",
	}
)

// ProbeClosedTrades returns the wallet's closed-trade rows and the endpoint
// that served them. Exhausting every candidate yields an empty slice, never
// an error: one wallet's missing history must not abort a batch.
func (c *PolymarketApiClient) ProbeClosedTrades(ctx context.Context, wallet string) ([]map[string]any, string) {
	return c.probeRows(ctx, wallet, closedTradePaths)
}

// ProbeOpenPositions returns the wallet's open-position rows and the serving
// endpoint.
func (c *PolymarketApiClient) ProbeOpenPositions(ctx context.Context, wallet string) ([]map[string]any, string) {
	return c.probeRows(ctx, wallet, openPositionPaths)
}

// ProbeRollup returns the wallet's precomputed aggregate object, or nil when
// no rollup endpoint responds.
func (c *PolymarketApiClient) ProbeRollup(ctx context.Context, wallet string) (map[string]any, string) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, ""
	}

	for _, pattern := range rollupPaths {
		u := c.baseURL + fmt.Sprintf(pattern, url.PathEscape(wallet))
		var payload json.RawMessage
		if err := c.doGet(ctx, u, &payload); err != nil {
			c.logger.Debug("rollup probe failed", zap.String("endpoint", pattern), zap.Error(err))
			continue
		}
		obj := decodeObjectEnvelope(payload)
		if len(obj) == 0 {
			continue
		}
		return obj, pattern
	}
	return nil, ""
}

func (c *PolymarketApiClient) probeRows(ctx context.Context, wallet string, patterns []string) ([]map[string]any, string) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, ""
	}

	for _, pattern := range patterns {
		u := c.baseURL + fmt.Sprintf(pattern, url.PathEscape(wallet))
		rows, err := c.getRows(ctx, u)
		if err != nil {
			c.logger.Debug("probe failed", zap.String("endpoint", pattern), zap.Error(err))
			continue
		}
		if len(rows) == 0 {
			continue
		}
		return rows, pattern
	}
	return nil, ""
}

func (c *PolymarketApiClient) endpoint(path string, query map[string]string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid data API URL: %w", err)
	}
	u.Path = path

	q := u.Query()
	for key, value := range query {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// getRows performs a GET and decodes the row list from whichever envelope the
// endpoint uses: a bare array, or an object wrapping it.
func (c *PolymarketApiClient) getRows(ctx context.Context, url string) ([]map[string]any, error) {
	var payload json.RawMessage
	if err := c.doGet(ctx, url, &payload); err != nil {
		return nil, err
	}
	return decodeRowsEnvelope(payload), nil
}

// doGet performs a GET with bounded retry on transport failures and decodes
// the JSON response. Application-level errors (non-2xx with a parsed body)
// are not retried.
func (c *PolymarketApiClient) doGet(ctx context.Context, url string, dest any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryBackoff * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode/100 != 2 {
			// Retry server-side failures only.
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
				continue
			}
			return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
		return nil
	}
	return lastErr
}

// decodeRowsEnvelope extracts a row list from a bare array or the first
// wrapping key that holds one.
func decodeRowsEnvelope(payload json.RawMessage) []map[string]any {
	if len(payload) == 0 {
		return nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err == nil {
		return rows
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil
	}
	for _, key := range []string{"trades", "fills", "data", "rows", "positions"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err == nil && rows != nil {
			return rows
		}
	}
	return nil
}

// decodeObjectEnvelope extracts a rollup object, unwrapping a "data" layer
// when present.
func decodeObjectEnvelope(payload json.RawMessage) map[string]any {
	if len(payload) == 0 {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner
	}
	return obj
}
