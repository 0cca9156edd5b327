package app

import (
	"strings"
	"time"
)

const (
	marketURLBase = "https://polymarket.com/event"
	homepageURL   = "https://polymarket.com"
)

// Outcome is the side of a binary market a trade was placed on.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Result is the resolution of a trade's market.
type Result string

const (
	ResultWin     Result = "Win"
	ResultLoss    Result = "Loss"
	ResultPending Result = "Pending"
)

// Trade is a single fill in canonical form. Trades are immutable once
// normalized; anything malformed is dropped during normalization, never
// surfaced as an error.
type Trade struct {
	Wallet         string  `json:"wallet"`
	Outcome        Outcome `json:"outcome"`
	SizeUSD        float64 `json:"sizeUSD"`
	Price          float64 `json:"price"`
	MarketID       string  `json:"marketId"`
	MarketQuestion string  `json:"marketQuestion"`
	MarketURL      string  `json:"marketUrl"`
	Timestamp      int64   `json:"timestamp"`
	PnlUSD         float64 `json:"pnlUSD"`
	Result         Result  `json:"result"`
}

// Candidate field names per logical field. Upstream variants use snake_case,
// camelCase, and nested market objects interchangeably; the lists are ordered
// by preference and are the only place a new upstream format needs touching.
var (
	walletKeys      = []string{"wallet", "proxyWallet", "user", "trader", "address"}
	outcomeKeys     = []string{"outcome", "side"}
	explicitUSDKeys = []string{"sizeUSD", "size_usd", "usdValue", "usd_value", "usdcSize", "amount_usd", "notional_usd", "notionalUSD"}
	sizeKeys        = []string{"size", "contracts", "amount", "shares"}
	priceKeys       = []string{"price", "tradePrice", "avgPrice", "avg_price", "average_price"}
	marketIDKeys    = []string{"marketId", "conditionId", "market_id", "condition_id"}
	questionKeys    = []string{"marketQuestion", "title", "question", "market_question"}
	slugKeys        = []string{"slug", "market_slug", "marketSlug"}
	urlKeys         = []string{"marketUrl", "market_url"}
	timestampKeys   = []string{"timestamp", "closedAt", "closed_at", "createdTime", "created_time", "time"}
	pnlKeys         = []string{"pnlUSD", "pnl_usd", "realizedPnlUSD", "realized_pnl_usd", "realizedPnl", "realized_pnl"}
	resultKeys      = []string{"result", "status"}
)

// NormalizeOutcome maps raw outcome/side tokens onto YES/NO. BUY means the
// YES side, SELL the NO side; anything unrecognized defaults to YES.
func NormalizeOutcome(raw string) Outcome {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "YES", "BUY":
		return OutcomeYes
	case "NO", "SELL":
		return OutcomeNo
	default:
		return OutcomeYes
	}
}

// NormalizeTrade converts one raw upstream record into a canonical Trade.
// Returns false for records that are unusable: missing wallet, price outside
// [0,1], or a non-positive notional. It never panics on odd shapes.
func NormalizeTrade(raw map[string]any) (Trade, bool) {
	if raw == nil {
		return Trade{}, false
	}

	wallet, _ := firstString(raw, walletKeys...)
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return Trade{}, false
	}

	price, ok := firstNumber(raw, priceKeys...)
	if !ok || price < 0 || price > 1 {
		return Trade{}, false
	}

	// Prefer an explicit USD notional; otherwise derive size*price. No unit
	// scaling constant is applied (data-api sizes are share counts, prices USD).
	sizeUSD, ok := firstNumber(raw, explicitUSDKeys...)
	if !ok {
		size, sizeOK := firstNumber(raw, sizeKeys...)
		if !sizeOK {
			return Trade{}, false
		}
		sizeUSD = size * price
	}
	if sizeUSD <= 0 {
		return Trade{}, false
	}

	outcomeRaw, _ := firstString(raw, outcomeKeys...)
	market := nestedMarket(raw)

	marketID, _ := firstString(raw, marketIDKeys...)
	if marketID == "" {
		marketID, _ = firstString(market, "id", "conditionId", "condition_id")
	}

	question, _ := firstString(raw, questionKeys...)
	if question == "" {
		question, _ = firstString(market, "question", "title")
	}
	question = nz(question, "Polymarket market")

	slug, _ := firstString(raw, slugKeys...)
	if slug == "" {
		slug, _ = firstString(market, "slug")
	}

	marketURL, _ := firstString(raw, urlKeys...)
	if marketURL == "" {
		marketURL = buildMarketURL(marketID, slug)
	}

	pnl, hasPnl := firstNumber(raw, pnlKeys...)
	result := normalizeResult(raw, pnl, hasPnl)

	return Trade{
		Wallet:         wallet,
		Outcome:        NormalizeOutcome(outcomeRaw),
		SizeUSD:        sizeUSD,
		Price:          price,
		MarketID:       marketID,
		MarketQuestion: question,
		MarketURL:      marketURL,
		Timestamp:      normalizeTimestamp(raw),
		PnlUSD:         pnl,
		Result:         result,
	}, true
}

// NormalizeTrades drops malformed rows silently.
func NormalizeTrades(rows []map[string]any) []Trade {
	trades := make([]Trade, 0, len(rows))
	for _, row := range rows {
		if trade, ok := NormalizeTrade(row); ok {
			trades = append(trades, trade)
		}
	}
	return trades
}

func nestedMarket(raw map[string]any) map[string]any {
	if m, ok := raw["market"].(map[string]any); ok {
		return m
	}
	return nil
}

func buildMarketURL(marketID, slug string) string {
	if slug != "" {
		return marketURLBase + "/" + slug
	}
	if marketID != "" {
		return marketURLBase + "/" + marketID
	}
	return homepageURL
}

func normalizeResult(raw map[string]any, pnl float64, hasPnl bool) Result {
	if status, ok := firstString(raw, resultKeys...); ok {
		switch strings.ToLower(status) {
		case "win", "won":
			return ResultWin
		case "loss", "lost":
			return ResultLoss
		case "pending":
			return ResultPending
		}
	}
	if hasPnl {
		if pnl > 0 {
			return ResultWin
		}
		if pnl < 0 {
			return ResultLoss
		}
	}
	return ResultPending
}

// normalizeTimestamp accepts epoch seconds (or milliseconds), or an RFC 3339
// string. Missing or unparseable timestamps default to now: the record is
// treated as most recent rather than rejected.
func normalizeTimestamp(raw map[string]any) int64 {
	for _, key := range timestampKeys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if n, ok := safeNumber(value); ok && n > 0 {
			ts := int64(n)
			if ts > 1e12 { // milliseconds
				ts /= 1000
			}
			return ts
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
				return parsed.Unix()
			}
		}
	}
	return time.Now().Unix()
}
