package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeMarketData struct {
	closed    []map[string]any
	positions []map[string]any
	rollup    map[string]any

	closedCalls int
}

func (f *fakeMarketData) ProbeClosedTrades(ctx context.Context, wallet string) ([]map[string]any, string) {
	f.closedCalls++
	if f.closed == nil {
		return nil, ""
	}
	return f.closed, "/account/%s/trades"
}

func (f *fakeMarketData) ProbeOpenPositions(ctx context.Context, wallet string) ([]map[string]any, string) {
	if f.positions == nil {
		return nil, ""
	}
	return f.positions, "/account/%s/positions"
}

func (f *fakeMarketData) ProbeRollup(ctx context.Context, wallet string) (map[string]any, string) {
	if f.rollup == nil {
		return nil, ""
	}
	return f.rollup, "/account/%s/stats"
}

func TestGetStatsRollupWins(t *testing.T) {
	fake := &fakeMarketData{
		closed: []map[string]any{
			{"pnl": 100.0},
			{"pnl": -50.0},
		},
		positions: []map[string]any{
			{"currentValue": 500.0},
		},
		rollup: map[string]any{
			"totalTrades":   1200.0,
			"largestWin":    15000.0,
			"realizedPnl":   65000.0,
			"positionValue": 55000.0,
			"winRate":       0.61,
		},
	}
	agg := NewStatsAggregator(nil, fake, time.Hour)

	stats := agg.GetStats(context.Background(), "0xABC")

	assert.Equal(t, 1200, stats.TotalTrades)
	assert.Equal(t, 15000.0, stats.LargestWinUSD)
	assert.Equal(t, 65000.0, stats.RealizedPnlUSD)
	assert.Equal(t, 55000.0, stats.PositionValueUSD)
	assert.InDelta(t, 0.61, stats.WinRate, 1e-9)
	assert.False(t, stats.TradesOnly)
}

func TestGetStatsPercentWinRateScaled(t *testing.T) {
	fake := &fakeMarketData{
		rollup: map[string]any{"winRate": 61.0},
	}
	agg := NewStatsAggregator(nil, fake, time.Hour)

	stats := agg.GetStats(context.Background(), "0xabc")

	assert.InDelta(t, 0.61, stats.WinRate, 1e-9)
}

func TestGetStatsFallsBackToClosedRows(t *testing.T) {
	fake := &fakeMarketData{
		closed: []map[string]any{
			{"pnl": 200.0},
			{"pnl": 500.0},
			{"pnl": -100.0},
			{"status": "pending"},
		},
	}
	agg := NewStatsAggregator(nil, fake, time.Hour)

	stats := agg.GetStats(context.Background(), "0xabc")

	assert.Equal(t, 4, stats.TotalTrades)
	assert.Equal(t, 500.0, stats.LargestWinUSD)
	assert.Equal(t, 600.0, stats.RealizedPnlUSD)
	assert.Equal(t, 0.0, stats.PositionValueUSD)
	// Two wins, one loss; the pending row resolves to neither.
	assert.InDelta(t, 2.0/3.0, stats.WinRate, 1e-9)
	assert.True(t, stats.TradesOnly)
}

func TestGetStatsPositionSumWithoutRollup(t *testing.T) {
	fake := &fakeMarketData{
		closed: []map[string]any{{"pnl": 10.0}},
		positions: []map[string]any{
			{"currentValue": 300.0},
			{"value": 200.0},
		},
	}
	agg := NewStatsAggregator(nil, fake, time.Hour)

	stats := agg.GetStats(context.Background(), "0xabc")

	assert.Equal(t, 500.0, stats.PositionValueUSD)
	assert.False(t, stats.TradesOnly)
}

func TestGetStatsAllProbesFail(t *testing.T) {
	agg := NewStatsAggregator(nil, &fakeMarketData{}, time.Hour)

	stats := agg.GetStats(context.Background(), "0xabc")

	assert.Equal(t, TraderStats{TradesOnly: true}, stats)
}

func TestGetStatsCachesPerWallet(t *testing.T) {
	fake := &fakeMarketData{
		closed: []map[string]any{{"pnl": 100.0}},
	}
	agg := NewStatsAggregator(nil, fake, time.Hour)

	first := agg.GetStats(context.Background(), "0xABC")
	second := agg.GetStats(context.Background(), "0xabc")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.closedCalls)
}

func TestGetStatsWithNotes(t *testing.T) {
	fake := &fakeMarketData{
		closed: []map[string]any{{"pnl": 100.0}, {"pnl": -20.0}},
		rollup: map[string]any{"totalTrades": 50.0},
	}
	agg := NewStatsAggregator(nil, fake, time.Hour)

	_, notes := agg.GetStatsWithNotes(context.Background(), "0xabc")

	assert.Len(t, notes, 2)
	assert.Equal(t, "closed-trades", notes[0].Family)
	assert.Equal(t, 2, notes[0].Rows)
	assert.Equal(t, "rollup", notes[1].Family)

	// Cache hit carries no notes.
	_, notes = agg.GetStatsWithNotes(context.Background(), "0xabc")
	assert.Empty(t, notes)
}

func TestComputeWinRate(t *testing.T) {
	assert.Equal(t, 0.0, computeWinRate(0, 0))
	assert.Equal(t, 1.0, computeWinRate(5, 0))
	assert.Equal(t, 0.5, computeWinRate(3, 3))
}
