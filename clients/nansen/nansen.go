package nansen

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

// Wallet is one labeled address from the labeling service.
type Wallet struct {
	Address string `json:"address"`
	Label   string `json:"label"`
}

// category is one wallet list endpoint plus the label applied to entries
// that carry none of their own.
type category struct {
	path          string
	fallbackLabel string
}

// Categories tried in order; each failure is tolerated independently.
var categories = []category{
	{"smart-money", "Smart Money • Nansen"},
	{"smart-traders", "Smart Trader • Nansen"},
	{"whales", "Whale • Nansen"},
}

// Client fetches curated smart-wallet labels. A missing API key or any
// request failure degrades to an empty result; the caller decides how to
// fall back.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(logger *zap.Logger, cfg *config.Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: cfg.Nansen.BaseURL,
		apiKey:  cfg.Nansen.APIKey,
	}
}

// HasKey reports whether the client is configured with an API key.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// FetchSmartWallets queries every wallet category and merges the results,
// deduplicating by lowercased address (first seen wins). Returns an error
// only when no key is configured; individual category failures are logged
// and skipped.
func (c *Client) FetchSmartWallets(ctx context.Context) ([]Wallet, error) {
	if !c.HasKey() {
		return nil, fmt.Errorf("nansen API key not configured")
	}

	var combined []Wallet
	seen := make(map[string]struct{})

	for _, cat := range categories {
		wallets, err := c.fetchCategory(ctx, cat)
		if err != nil {
			c.logger.Warn("failed to fetch wallet category",
				zap.String("category", cat.path),
				zap.Error(err),
			)
			continue
		}
		for _, w := range wallets {
			if _, dup := seen[w.Address]; dup {
				continue
			}
			seen[w.Address] = struct{}{}
			combined = append(combined, w)
		}
	}

	c.logger.Info("fetched smart wallets", zap.Int("count", len(combined)))
	return combined, nil
}

func (c *Client) fetchCategory(ctx context.Context, cat category) ([]Wallet, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid nansen base URL: %w", err)
	}
	u.Path = "/wallets/" + cat.path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nansen request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read nansen response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("nansen status=%d body=%s", resp.StatusCode, string(body))
	}

	entries, err := decodeWalletEnvelope(body)
	if err != nil {
		return nil, err
	}

	wallets := make([]Wallet, 0, len(entries))
	for _, entry := range entries {
		address := strings.ToLower(strings.TrimSpace(firstAddress(entry)))
		if address == "" {
			continue
		}
		label := cat.fallbackLabel
		if l, ok := entry["label"].(string); ok && strings.TrimSpace(l) != "" {
			label = strings.TrimSpace(l)
		}
		wallets = append(wallets, Wallet{Address: address, Label: label})
	}

	return wallets, nil
}

// decodeWalletEnvelope tolerates the payload shapes the labeling API has
// shipped: a bare array, or an object wrapping it under wallets/data/items.
func decodeWalletEnvelope(body []byte) ([]map[string]any, error) {
	var direct []map[string]any
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode nansen json: %w", err)
	}
	for _, key := range []string{"wallets", "data", "items"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var entries []map[string]any
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
	}
	return nil, nil
}

func firstAddress(entry map[string]any) string {
	for _, key := range []string{"address", "wallet", "walletAddress"} {
		if s, ok := entry[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
