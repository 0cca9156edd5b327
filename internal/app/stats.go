package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TraderStats is the per-wallet performance aggregate driving the smart-money
// filters.
type TraderStats struct {
	TotalTrades      int     `json:"totalTrades"`
	LargestWinUSD    float64 `json:"largestWinUsd"`
	PositionValueUSD float64 `json:"positionValueUsd"`
	RealizedPnlUSD   float64 `json:"realizedPnlUsd"`
	WinRate          float64 `json:"winRate"`

	// TradesOnly marks stats assembled without any rollup or position data,
	// from closed-trade rows alone. Filters relax monetary minimums for
	// these wallets.
	TradesOnly bool `json:"tradesOnly"`
}

// ProbeNote records which endpoint served a probe family and how many rows it
// yielded, for diagnostics.
type ProbeNote struct {
	Family   string `json:"family"`
	Endpoint string `json:"endpoint"`
	Rows     int    `json:"rows"`
}

// MarketDataClient is the per-wallet detail surface of the Polymarket data
// API client.
type MarketDataClient interface {
	ProbeClosedTrades(ctx context.Context, wallet string) ([]map[string]any, string)
	ProbeOpenPositions(ctx context.Context, wallet string) ([]map[string]any, string)
	ProbeRollup(ctx context.Context, wallet string) (map[string]any, string)
}

// StatsAggregator builds TraderStats per wallet, caching results so repeated
// pipeline runs within the TTL skip the probe round-trips.
type StatsAggregator struct {
	logger *zap.Logger
	client MarketDataClient
	cache  *TTLCache[TraderStats]
}

func NewStatsAggregator(logger *zap.Logger, client MarketDataClient, cacheTTL time.Duration) *StatsAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatsAggregator{
		logger: logger,
		client: client,
		cache:  NewTTLCache[TraderStats](cacheTTL),
	}
}

// GetStats returns the wallet's aggregate, from cache when fresh. A wallet
// whose probes all fail gets an empty TradesOnly aggregate; the batch never
// aborts on one wallet.
func (a *StatsAggregator) GetStats(ctx context.Context, wallet string) TraderStats {
	stats, _ := a.GetStatsWithNotes(ctx, wallet)
	return stats
}

// GetStatsWithNotes is GetStats plus the probe notes that produced the
// aggregate. Cache hits return no notes.
func (a *StatsAggregator) GetStatsWithNotes(ctx context.Context, wallet string) (TraderStats, []ProbeNote) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return TraderStats{TradesOnly: true}, nil
	}

	if cached, ok := a.cache.Get(wallet); ok {
		return cached, nil
	}

	stats, notes := a.compute(ctx, wallet)
	a.cache.Set(wallet, stats)
	return stats, notes
}

func (a *StatsAggregator) compute(ctx context.Context, wallet string) (TraderStats, []ProbeNote) {
	var notes []ProbeNote

	closed, closedEndpoint := a.client.ProbeClosedTrades(ctx, wallet)
	if closedEndpoint != "" {
		notes = append(notes, ProbeNote{Family: "closed-trades", Endpoint: closedEndpoint, Rows: len(closed)})
	}

	positions, positionsEndpoint := a.client.ProbeOpenPositions(ctx, wallet)
	if positionsEndpoint != "" {
		notes = append(notes, ProbeNote{Family: "open-positions", Endpoint: positionsEndpoint, Rows: len(positions)})
	}

	rollup, rollupEndpoint := a.client.ProbeRollup(ctx, wallet)
	if rollupEndpoint != "" {
		notes = append(notes, ProbeNote{Family: "rollup", Endpoint: rollupEndpoint, Rows: 1})
	}

	stats := assembleStats(closed, positions, rollup)

	a.logger.Debug("trader stats computed",
		zap.String("wallet", shortID(wallet)),
		zap.Int("totalTrades", stats.TotalTrades),
		zap.Float64("winRate", stats.WinRate),
		zap.Bool("tradesOnly", stats.TradesOnly))

	return stats, notes
}

// assembleStats merges the three probe families. Rollup fields win when
// usable; closed trades and open positions fill the rest.
func assembleStats(closed, positions []map[string]any, rollup map[string]any) TraderStats {
	var stats TraderStats

	wins, losses, largestWin, realizedSum := summarizeClosed(closed)

	stats.TotalTrades = len(closed)
	if total, ok := firstNumber(rollup, "totalTrades", "total_trades", "numTrades", "trades", "tradeCount"); ok && total > 0 {
		stats.TotalTrades = int(total)
	}

	stats.LargestWinUSD = largestWin
	if v, ok := firstNumber(rollup, "largestWin", "largest_win", "largestWinUsd", "maxWin", "biggestWin"); ok && v != 0 {
		stats.LargestWinUSD = v
	}

	stats.RealizedPnlUSD = realizedSum
	if v, ok := firstNumber(rollup, "realizedPnl", "realized_pnl", "realizedPnlUsd", "pnl", "profit"); ok && v != 0 {
		stats.RealizedPnlUSD = v
	}

	stats.PositionValueUSD = sumPositionValue(positions)
	if v, ok := firstNumber(rollup, "positionValue", "position_value", "portfolioValue", "currentValue", "value"); ok && v != 0 {
		stats.PositionValueUSD = v
	}

	stats.WinRate = computeWinRate(wins, losses)
	if v, ok := firstNumber(rollup, "winRate", "win_rate", "winrate", "winPct", "win_pct"); ok && v > 0 {
		// Some rollups report percent instead of ratio.
		if v > 1 {
			v /= 100
		}
		if v <= 1 {
			stats.WinRate = v
		}
	}

	stats.TradesOnly = rollup == nil && len(positions) == 0
	return stats
}

// summarizeClosed walks resolved rows counting wins and losses and summing
// realized pnl. Pending rows count toward neither.
func summarizeClosed(closed []map[string]any) (wins, losses int, largestWin, realizedSum float64) {
	for _, row := range closed {
		pnl, hasPnl := firstNumber(row, "pnlUSD", "pnl", "profit", "realizedPnl", "realized_pnl")
		if hasPnl {
			realizedSum += pnl
			if pnl > largestWin {
				largestWin = pnl
			}
		}

		switch normalizeResult(row, pnl, hasPnl) {
		case ResultWin:
			wins++
		case ResultLoss:
			losses++
		}
	}
	return wins, losses, largestWin, realizedSum
}

func sumPositionValue(positions []map[string]any) float64 {
	var total float64
	for _, row := range positions {
		if v, ok := firstNumber(row, "currentValue", "current_value", "value", "usdValue", "positionValue", "size_usd", "sizeUSD"); ok {
			total += v
		}
	}
	return total
}

// computeWinRate is wins over resolved outcomes, 0 when nothing resolved.
func computeWinRate(wins, losses int) float64 {
	resolved := wins + losses
	if resolved == 0 {
		return 0
	}
	return float64(wins) / float64(resolved)
}
