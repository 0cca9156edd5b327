package app

import (
	"fmt"

	"go.uber.org/zap"

	"whalewatch/clients/notifier"
	"whalewatch/config"
)

// BetAlerter pushes newly surfaced dashboard rows to the configured
// notification channels, deduplicating so a bet alerts once per TTL even
// though it keeps appearing in refresh cycles.
type BetAlerter struct {
	logger   *zap.Logger
	cfg      config.AlertsConfig
	notifier notifier.Notifier
	seen     *TTLCache[struct{}]
}

func NewBetAlerter(logger *zap.Logger, cfg config.AlertsConfig, n notifier.Notifier) *BetAlerter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BetAlerter{
		logger:   logger,
		cfg:      cfg,
		notifier: n,
		seen:     NewTTLCache[struct{}](cfg.SeenCacheTTL),
	}
}

// ProcessBets alerts on unseen bets at or above the notional floor, capped
// per cycle. Returns how many alerts were dispatched.
func (a *BetAlerter) ProcessBets(bets []RecentBet) int {
	if !a.cfg.Enabled || a.notifier == nil {
		return 0
	}

	sent := 0
	for _, bet := range bets {
		if a.cfg.MaxPerCycle > 0 && sent >= a.cfg.MaxPerCycle {
			break
		}
		if bet.SizeUSD < a.cfg.MinNotional {
			continue
		}

		key := betKey(bet)
		if _, ok := a.seen.Get(key); ok {
			continue
		}
		a.seen.Set(key, struct{}{})

		if err := a.notifier.SendBetAlert(toBetAlert(bet)); err != nil {
			a.logger.Warn("bet alert failed", zap.String("wallet", bet.Wallet), zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		a.logger.Info("bet alerts dispatched", zap.Int("count", sent))
	}
	return sent
}

// betKey identifies one bet across refresh cycles. The headline trade's
// timestamp changes only when the wallet places new bets, which should alert
// again.
func betKey(bet RecentBet) string {
	market := bet.MarketID
	if market == "" {
		market = bet.MarketURL
	}
	return fmt.Sprintf("%s|%s|%.2f|%d", bet.Wallet, market, bet.SizeUSD, bet.Timestamp)
}

func toBetAlert(bet RecentBet) notifier.BetAlert {
	return notifier.BetAlert{
		Wallet:         bet.Wallet,
		Label:          bet.Label,
		Outcome:        string(bet.Outcome),
		SizeUSD:        bet.SizeUSD,
		Price:          bet.Price,
		MarketQuestion: bet.MarketQuestion,
		MarketURL:      bet.MarketURL,
		WinRate:        bet.Stats.WinRate,
		TotalTrades:    bet.Stats.TotalTrades,
	}
}
