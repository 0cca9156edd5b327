package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Environment
	IsProd bool

	// Polymarket data API
	Polymarket PolymarketConfig

	// Nansen wallet labeling
	Nansen NansenConfig

	// Aggregation pipeline
	Pipeline PipelineConfig

	// Trader stat thresholds
	Thresholds ThresholdsConfig

	// Alerting
	Alerts AlertsConfig

	// Discord
	Discord DiscordConfig

	// Telegram
	Telegram TelegramConfig

	// API server
	Server ServerConfig
}

// PolymarketConfig holds the trades/stats data source configuration.
type PolymarketConfig struct {
	DataAPIURL string
	APIKey     string // optional; some account endpoints require it
}

// NansenConfig holds the wallet-label source configuration.
type NansenConfig struct {
	BaseURL string
	APIKey  string // absence triggers allowlist/derived fallback, never an error
}

// PipelineConfig holds tuning for the aggregation pipeline.
type PipelineConfig struct {
	TradesLimit     int           // recent trades to fetch per refresh
	Window          time.Duration // only trades newer than now-Window are considered
	MinBetUSD       float64       // per-bet notional floor (inclusive)
	ResultCap       int           // max bets returned after ranking
	Concurrency     int           // bounded workers for per-wallet stats
	StatsCacheTTL   time.Duration // TTL for cached trader stats
	RefreshInterval time.Duration // background refresh cadence
	DerivedCap      int           // max wallets synthesized in derived mode
	Relaxed         bool          // force relaxed threshold mode
}

// ThresholdsConfig holds the smart-trader minimums. Monetary values are USD;
// WinRate is a ratio in [0,1]. Stats must strictly exceed each minimum.
type ThresholdsConfig struct {
	MinTotalTrades      int
	MinLargestWinUSD    float64
	MinPositionValueUSD float64
	MinRealizedPnlUSD   float64
	MinWinRate          float64
}

// AlertsConfig holds bet alert configuration.
type AlertsConfig struct {
	Enabled      bool
	MinNotional  float64 // only bets at or above this size are alerted
	MaxPerCycle  int     // cap alerts sent per refresh cycle
	SeenCacheTTL time.Duration
}

// DiscordConfig holds Discord-related configuration.
type DiscordConfig struct {
	BotToken  string
	ChannelID string
}

// TelegramConfig holds Telegram-related configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// ServerConfig holds the JSON API server configuration.
type ServerConfig struct {
	Enabled bool
	Port    int
}

// AllowlistEntry is one locally configured smart wallet.
type AllowlistEntry struct {
	Address string
	Label   string
}

// Allowlist holds the SMART_WALLETS entries parsed at load time.
type Allowlist []AllowlistEntry

// Defaults returns a config with hardcoded default values.
func Defaults() *Config {
	return &Config{
		IsProd: false,
		Polymarket: PolymarketConfig{
			DataAPIURL: "https://data-api.polymarket.com",
		},
		Nansen: NansenConfig{
			BaseURL: "https://api.nansen.ai",
		},
		Pipeline: PipelineConfig{
			TradesLimit:     500,
			Window:          24 * time.Hour,
			MinBetUSD:       500,
			ResultCap:       50,
			Concurrency:     4,
			StatsCacheTTL:   time.Hour,
			RefreshInterval: 5 * time.Minute,
			DerivedCap:      200,
			Relaxed:         false,
		},
		Thresholds: ThresholdsConfig{
			MinTotalTrades:      1000,
			MinLargestWinUSD:    10_000,
			MinPositionValueUSD: 40_000,
			MinRealizedPnlUSD:   50_000,
			MinWinRate:          0.5,
		},
		Alerts: AlertsConfig{
			Enabled:      false,
			MinNotional:  10_000,
			MaxPerCycle:  5,
			SeenCacheTTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() *Config {
	cfg := Defaults()

	cfg.IsProd = envBool("IS_PROD", cfg.IsProd)

	cfg.Polymarket.DataAPIURL = envString("POLY_API_BASE", cfg.Polymarket.DataAPIURL)
	cfg.Polymarket.APIKey = envString("POLY_API_KEY", "")

	cfg.Nansen.BaseURL = envString("NANSEN_API_BASE", cfg.Nansen.BaseURL)
	cfg.Nansen.APIKey = envString("NANSEN_API_KEY", "")

	cfg.Pipeline.TradesLimit = envInt("TRADES_LIMIT", cfg.Pipeline.TradesLimit)
	cfg.Pipeline.Window = envDuration("TRADES_WINDOW", cfg.Pipeline.Window)
	cfg.Pipeline.MinBetUSD = envFloat("MIN_BET_USD", cfg.Pipeline.MinBetUSD)
	cfg.Pipeline.ResultCap = envInt("RESULT_CAP", cfg.Pipeline.ResultCap)
	cfg.Pipeline.Concurrency = envInt("STATS_CONCURRENCY", cfg.Pipeline.Concurrency)
	cfg.Pipeline.StatsCacheTTL = envDuration("STATS_CACHE_TTL", cfg.Pipeline.StatsCacheTTL)
	cfg.Pipeline.RefreshInterval = envDuration("REFRESH_INTERVAL", cfg.Pipeline.RefreshInterval)
	cfg.Pipeline.Relaxed = envBool("USE_LIMITED_MODE", cfg.Pipeline.Relaxed)

	cfg.Thresholds.MinTotalTrades = envInt("MIN_TOTAL_TRADES", cfg.Thresholds.MinTotalTrades)
	cfg.Thresholds.MinLargestWinUSD = envFloat("MIN_LARGEST_WIN_USD", cfg.Thresholds.MinLargestWinUSD)
	cfg.Thresholds.MinPositionValueUSD = envFloat("MIN_POSITION_VALUE_USD", cfg.Thresholds.MinPositionValueUSD)
	cfg.Thresholds.MinRealizedPnlUSD = envFloat("MIN_REALIZED_PNL_USD", cfg.Thresholds.MinRealizedPnlUSD)
	cfg.Thresholds.MinWinRate = envFloat("MIN_WIN_RATE", cfg.Thresholds.MinWinRate)

	cfg.Alerts.Enabled = envBool("ALERTS_ENABLED", cfg.Alerts.Enabled)
	cfg.Alerts.MinNotional = envFloat("ALERT_MIN_NOTIONAL", cfg.Alerts.MinNotional)
	cfg.Alerts.MaxPerCycle = envInt("ALERT_MAX_PER_CYCLE", cfg.Alerts.MaxPerCycle)

	cfg.Discord.BotToken = envString("DISCORD_BOT_TOKEN", "")
	cfg.Discord.ChannelID = envString("DISCORD_CHANNEL_ID", "")

	cfg.Telegram.BotToken = envString("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.ChatID = envString("TELEGRAM_CHAT_ID", "")

	cfg.Server.Enabled = envBool("API_SERVER_ENABLED", cfg.Server.Enabled)
	cfg.Server.Port = envInt("API_SERVER_PORT", cfg.Server.Port)

	return cfg
}

// LoadAllowlist parses the SMART_WALLETS env var into allowlist entries.
// Format: comma-separated "address:Label" pairs; the label is optional.
func LoadAllowlist() Allowlist {
	return ParseAllowlist(os.Getenv("SMART_WALLETS"))
}

// DefaultAllowlistLabel is applied to allowlist entries without one.
const DefaultAllowlistLabel = "Smart • Allowlist"

// ParseAllowlist parses "addr:Label,addr" into allowlist entries. Addresses
// are lowercased; blank entries are skipped.
func ParseAllowlist(raw string) Allowlist {
	var entries Allowlist
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		address := part
		label := DefaultAllowlistLabel
		if idx := strings.Index(part, ":"); idx >= 0 {
			address = strings.TrimSpace(part[:idx])
			if l := strings.TrimSpace(part[idx+1:]); l != "" {
				label = l
			}
		}
		if address == "" {
			continue
		}
		entries = append(entries, AllowlistEntry{
			Address: strings.ToLower(address),
			Label:   label,
		})
	}
	return entries
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
