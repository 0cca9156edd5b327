package app

import "whalewatch/config"

// Thresholds are the trader-quality minimums a wallet must clear before its
// bets surface on the dashboard.
type Thresholds struct {
	MinTotalTrades      int
	MinLargestWinUSD    float64
	MinPositionValueUSD float64
	MinRealizedPnlUSD   float64
	MinWinRate          float64

	// Relaxed drops the monetary minimums, keeping only trade count and win
	// rate. Used when per-wallet detail endpoints are too thin to populate
	// them.
	Relaxed bool
}

func ThresholdsFromConfig(cfg config.ThresholdsConfig, relaxed bool) Thresholds {
	return Thresholds{
		MinTotalTrades:      cfg.MinTotalTrades,
		MinLargestWinUSD:    cfg.MinLargestWinUSD,
		MinPositionValueUSD: cfg.MinPositionValueUSD,
		MinRealizedPnlUSD:   cfg.MinRealizedPnlUSD,
		MinWinRate:          cfg.MinWinRate,
		Relaxed:             relaxed,
	}
}

// Passes reports whether the stats clear every minimum. All comparisons are
// strictly greater than: a wallet sitting exactly on a minimum is rejected.
// TradesOnly stats get the relaxed treatment regardless of the flag, since
// their monetary fields are zeros by construction.
func (t Thresholds) Passes(stats TraderStats) bool {
	if stats.TotalTrades <= t.MinTotalTrades {
		return false
	}
	if stats.WinRate <= t.MinWinRate {
		return false
	}

	if t.Relaxed || stats.TradesOnly {
		return true
	}

	if stats.LargestWinUSD <= t.MinLargestWinUSD {
		return false
	}
	if stats.PositionValueUSD <= t.MinPositionValueUSD {
		return false
	}
	if stats.RealizedPnlUSD <= t.MinRealizedPnlUSD {
		return false
	}
	return true
}

// MeetsBetFloor reports whether a trade's notional clears the dashboard's
// minimum bet. Unlike the stat minimums this one is inclusive.
func MeetsBetFloor(trade Trade, minBetUSD float64) bool {
	return trade.SizeUSD >= minBetUSD
}
