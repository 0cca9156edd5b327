package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"whalewatch/config"
)

func defaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.Defaults().Thresholds, false)
}

func passingStats() TraderStats {
	return TraderStats{
		TotalTrades:      1500,
		LargestWinUSD:    15000,
		PositionValueUSD: 55000,
		RealizedPnlUSD:   65000,
		WinRate:          0.6,
	}
}

func TestPassesAllMinimums(t *testing.T) {
	assert.True(t, defaultThresholds().Passes(passingStats()))
}

func TestPassesSingleFieldFlip(t *testing.T) {
	thresholds := defaultThresholds()

	tests := []struct {
		name   string
		mutate func(*TraderStats)
	}{
		{"totalTrades below", func(s *TraderStats) { s.TotalTrades = 800 }},
		{"largestWin below", func(s *TraderStats) { s.LargestWinUSD = 9000 }},
		{"positionValue below", func(s *TraderStats) { s.PositionValueUSD = 30000 }},
		{"realizedPnl below", func(s *TraderStats) { s.RealizedPnlUSD = 40000 }},
		{"winRate below", func(s *TraderStats) { s.WinRate = 0.4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := passingStats()
			tt.mutate(&stats)
			assert.False(t, thresholds.Passes(stats))
		})
	}
}

func TestPassesExactMinimumRejected(t *testing.T) {
	thresholds := defaultThresholds()

	stats := passingStats()
	stats.TotalTrades = thresholds.MinTotalTrades
	assert.False(t, thresholds.Passes(stats))

	stats = passingStats()
	stats.WinRate = thresholds.MinWinRate
	assert.False(t, thresholds.Passes(stats))

	stats = passingStats()
	stats.LargestWinUSD = thresholds.MinLargestWinUSD
	assert.False(t, thresholds.Passes(stats))
}

func TestPassesRelaxedIgnoresMonetary(t *testing.T) {
	thresholds := defaultThresholds()
	thresholds.Relaxed = true

	stats := TraderStats{TotalTrades: 1500, WinRate: 0.6}
	assert.True(t, thresholds.Passes(stats))

	// Trade count and win rate still apply.
	stats.WinRate = 0.3
	assert.False(t, thresholds.Passes(stats))
}

func TestPassesTradesOnlyStatsRelaxed(t *testing.T) {
	thresholds := defaultThresholds()

	stats := TraderStats{TotalTrades: 1500, WinRate: 0.6, TradesOnly: true}
	assert.True(t, thresholds.Passes(stats))
}

func TestMeetsBetFloorInclusive(t *testing.T) {
	assert.True(t, MeetsBetFloor(Trade{SizeUSD: 500}, 500))
	assert.True(t, MeetsBetFloor(Trade{SizeUSD: 501}, 500))
	assert.False(t, MeetsBetFloor(Trade{SizeUSD: 499.99}, 500))
}
