package nansen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"whalewatch/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Defaults()
	cfg.Nansen.BaseURL = server.URL
	cfg.Nansen.APIKey = "test-key"
	return NewClient(zap.NewNop(), cfg), server
}

func TestFetchSmartWallets_MergesCategories(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		switch r.URL.Path {
		case "/wallets/smart-money":
			json.NewEncoder(w).Encode([]map[string]any{
				{"address": "0xAAA", "label": "Alpha Fund"},
				{"address": "0xBBB"},
			})
		case "/wallets/smart-traders":
			// Wrapped envelope, duplicate address from the first category.
			json.NewEncoder(w).Encode(map[string]any{
				"wallets": []map[string]any{
					{"address": "0xaaa", "label": "Dup"},
					{"wallet": "0xCCC"},
				},
			})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	wallets, err := client.FetchSmartWallets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wallets) != 3 {
		t.Fatalf("expected 3 wallets, got %d: %v", len(wallets), wallets)
	}
	if wallets[0].Address != "0xaaa" || wallets[0].Label != "Alpha Fund" {
		t.Errorf("unexpected first wallet: %+v", wallets[0])
	}
	if wallets[1].Label != "Smart Money • Nansen" {
		t.Errorf("expected category fallback label, got %q", wallets[1].Label)
	}
	if wallets[2].Address != "0xccc" || wallets[2].Label != "Smart Trader • Nansen" {
		t.Errorf("unexpected third wallet: %+v", wallets[2])
	}
}

func TestFetchSmartWallets_CategoryFailureTolerated(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wallets/whales" {
			json.NewEncoder(w).Encode([]map[string]any{{"address": "0xwhale"}})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	wallets, err := client.FetchSmartWallets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wallets) != 1 || wallets[0].Label != "Whale • Nansen" {
		t.Errorf("expected single whale wallet, got %v", wallets)
	}
}

func TestFetchSmartWallets_MissingKey(t *testing.T) {
	cfg := config.Defaults()
	client := NewClient(zap.NewNop(), cfg)

	if _, err := client.FetchSmartWallets(context.Background()); err == nil {
		t.Error("expected error without API key")
	}
	if client.HasKey() {
		t.Error("expected HasKey to be false")
	}
}

func TestDecodeWalletEnvelope_Shapes(t *testing.T) {
	direct, err := decodeWalletEnvelope([]byte(`[{"address":"0x1"}]`))
	if err != nil || len(direct) != 1 {
		t.Errorf("direct array: got %v err %v", direct, err)
	}

	wrapped, err := decodeWalletEnvelope([]byte(`{"data":[{"address":"0x2"}]}`))
	if err != nil || len(wrapped) != 1 {
		t.Errorf("wrapped data: got %v err %v", wrapped, err)
	}

	empty, err := decodeWalletEnvelope([]byte(`{"meta":1}`))
	if err != nil || empty != nil {
		t.Errorf("no list key: got %v err %v", empty, err)
	}

	if _, err := decodeWalletEnvelope([]byte(`"nope"`)); err == nil {
		t.Error("expected error for non-object payload")
	}
}
