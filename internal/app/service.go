package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"whalewatch/config"
)

// TradeSource is the trade-feed surface of the Polymarket data API client.
type TradeSource interface {
	GetRecentTrades(ctx context.Context, limit int) ([]map[string]any, error)
	GetWalletTrades(ctx context.Context, wallet string, limit int) ([]map[string]any, error)
}

// Service runs the smart-money aggregation pipeline: recent trades in, ranked
// dashboard rows out.
type Service struct {
	logger   *zap.Logger
	cfg      *config.Config
	trades   TradeSource
	resolver *WalletLabelResolver
	stats    *StatsAggregator

	now func() time.Time
}

func NewService(
	logger *zap.Logger,
	cfg *config.Config,
	trades TradeSource,
	resolver *WalletLabelResolver,
	stats *StatsAggregator,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:   logger,
		cfg:      cfg,
		trades:   trades,
		resolver: resolver,
		stats:    stats,
		now:      time.Now,
	}
}

// RankedBetsOptions are the per-request knobs for GetRankedBets. Zero values
// fall back to the pipeline config.
type RankedBetsOptions struct {
	MinBetUSD float64
	Window    time.Duration
	Sort      SortKey
	Cap       int
}

// RankedBetsResult carries the rows plus how they were produced.
type RankedBetsResult struct {
	Bets    []RecentBet `json:"bets"`
	Derived bool        `json:"derived"`
	Relaxed bool        `json:"relaxed"`
}

// GetRankedBets runs the full pipeline. The only hard error is the trade feed
// itself failing; every later stage degrades per wallet instead of aborting.
func (s *Service) GetRankedBets(ctx context.Context, opts RankedBetsOptions) (*RankedBetsResult, error) {
	minBet := opts.MinBetUSD
	if minBet <= 0 {
		minBet = s.cfg.Pipeline.MinBetUSD
	}
	window := opts.Window
	if window <= 0 {
		window = s.cfg.Pipeline.Window
	}
	resultCap := opts.Cap
	if resultCap <= 0 {
		resultCap = s.cfg.Pipeline.ResultCap
	}

	raw, err := s.trades.GetRecentTrades(ctx, s.cfg.Pipeline.TradesLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch recent trades: %w", err)
	}

	trades := s.windowTrades(NormalizeTrades(raw), window)
	s.logger.Debug("trades windowed",
		zap.Int("raw", len(raw)),
		zap.Int("kept", len(trades)),
		zap.Duration("window", window))

	smartWallets, derived := s.resolver.Resolve(ctx, trades)
	if len(smartWallets) == 0 {
		return &RankedBetsResult{Derived: derived}, nil
	}

	labels := make(map[string]string, len(smartWallets))
	for _, w := range smartWallets {
		labels[w.Address] = w.Label
	}

	byWallet := groupByWallet(trades, labels)
	wallets := make([]string, 0, len(byWallet))
	for wallet := range byWallet {
		wallets = append(wallets, wallet)
	}

	statsPerWallet := MapConcurrent(ctx, wallets, s.cfg.Pipeline.Concurrency,
		func(ctx context.Context, wallet string) TraderStats {
			return s.stats.GetStats(ctx, wallet)
		})

	relaxed := s.cfg.Pipeline.Relaxed || derived
	thresholds := ThresholdsFromConfig(s.cfg.Thresholds, relaxed)

	var bets []RecentBet
	for i, wallet := range wallets {
		stats := statsPerWallet[i]
		if !thresholds.Passes(stats) {
			continue
		}
		bet, ok := buildRecentBet(wallet, labels[wallet], byWallet[wallet], stats, minBet)
		if !ok {
			continue
		}
		bets = append(bets, bet)
	}

	result := &RankedBetsResult{
		Bets:    RankBets(bets, opts.Sort, resultCap),
		Derived: derived,
		Relaxed: relaxed,
	}

	s.logger.Info("ranked bets assembled",
		zap.Int("wallets", len(wallets)),
		zap.Int("bets", len(result.Bets)),
		zap.Bool("derived", derived),
		zap.Bool("relaxed", relaxed))

	return result, nil
}

// GetWalletStats returns the cached or freshly probed aggregate for one
// wallet.
func (s *Service) GetWalletStats(ctx context.Context, wallet string) (TraderStats, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return TraderStats{}, fmt.Errorf("wallet is empty")
	}
	return s.stats.GetStats(ctx, wallet), nil
}

// WalletHistory is a wallet's recent normalized trades plus the win rate over
// its resolved rows.
type WalletHistory struct {
	Wallet  string  `json:"wallet"`
	Label   string  `json:"label,omitempty"`
	WinRate float64 `json:"winRate"`
	Rows    []Trade `json:"rows"`
}

// GetWalletHistory fetches and normalizes one wallet's recent trades.
func (s *Service) GetWalletHistory(ctx context.Context, wallet string, limit int) (*WalletHistory, error) {
	wallet = strings.ToLower(strings.TrimSpace(wallet))
	if wallet == "" {
		return nil, fmt.Errorf("wallet is empty")
	}

	raw, err := s.trades.GetWalletTrades(ctx, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet trades: %w", err)
	}

	rows := NormalizeTrades(raw)

	var wins, losses int
	for _, row := range rows {
		switch row.Result {
		case ResultWin:
			wins++
		case ResultLoss:
			losses++
		}
	}

	return &WalletHistory{
		Wallet:  wallet,
		Label:   s.lookupLabel(ctx, wallet),
		WinRate: computeWinRate(wins, losses),
		Rows:    rows,
	}, nil
}

// lookupLabel checks the configured label sources for this wallet. No trades
// are passed, so derived mode cannot trigger here.
func (s *Service) lookupLabel(ctx context.Context, wallet string) string {
	known, _ := s.resolver.Resolve(ctx, nil)
	for _, w := range known {
		if w.Address == wallet {
			return w.Label
		}
	}
	return ""
}

func (s *Service) windowTrades(trades []Trade, window time.Duration) []Trade {
	cutoff := s.now().Add(-window).Unix()

	kept := trades[:0:0]
	for _, trade := range trades {
		if trade.Timestamp >= cutoff {
			kept = append(kept, trade)
		}
	}
	return kept
}

// groupByWallet buckets trades under their lowercased wallet, keeping only
// wallets present in the smart set.
func groupByWallet(trades []Trade, labels map[string]string) map[string][]Trade {
	grouped := make(map[string][]Trade)
	for _, trade := range trades {
		wallet := strings.ToLower(trade.Wallet)
		if _, ok := labels[wallet]; !ok {
			continue
		}
		grouped[wallet] = append(grouped[wallet], trade)
	}
	return grouped
}

// buildRecentBet picks the wallet's largest bet at or above the floor as the
// row's headline trade, stamping it with the wallet's latest activity and
// breadth counts.
func buildRecentBet(wallet, label string, trades []Trade, stats TraderStats, minBetUSD float64) (RecentBet, bool) {
	var peak *Trade
	var latest int64
	markets := make(map[string]struct{})

	for i := range trades {
		trade := &trades[i]
		if trade.Timestamp > latest {
			latest = trade.Timestamp
		}
		key := trade.MarketID
		if key == "" {
			key = trade.MarketURL
		}
		markets[key] = struct{}{}

		if !MeetsBetFloor(*trade, minBetUSD) {
			continue
		}
		if peak == nil || trade.SizeUSD > peak.SizeUSD {
			peak = trade
		}
	}
	if peak == nil {
		return RecentBet{}, false
	}

	return RecentBet{
		Wallet:          wallet,
		Label:           label,
		Outcome:         peak.Outcome,
		SizeUSD:         peak.SizeUSD,
		Price:           peak.Price,
		MarketID:        peak.MarketID,
		MarketQuestion:  peak.MarketQuestion,
		MarketURL:       peak.MarketURL,
		Timestamp:       latest,
		DistinctMarkets: len(markets),
		BetsCount:       len(trades),
		Stats:           stats,
	}, true
}
