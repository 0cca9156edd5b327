package notifier

import "go.uber.org/zap"

// BetAlert is a notification-ready view of one smart-money bet.
type BetAlert struct {
	Wallet         string
	Label          string
	Outcome        string
	SizeUSD        float64
	Price          float64
	MarketQuestion string
	MarketURL      string
	WinRate        float64
	TotalTrades    int
}

// Notifier delivers bet alerts to one destination.
type Notifier interface {
	SendBetAlert(alert BetAlert) error
	Close()
}

// MultiNotifier fans one alert out to every configured destination. A failed
// destination is logged and skipped; delivery is best effort.
type MultiNotifier struct {
	logger    *zap.Logger
	notifiers []Notifier
}

func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	active := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}

	return &MultiNotifier{
		logger:    logger,
		notifiers: active,
	}
}

func (m *MultiNotifier) SendBetAlert(alert BetAlert) error {
	for _, n := range m.notifiers {
		if err := n.SendBetAlert(alert); err != nil {
			m.logger.Warn("bet alert delivery failed",
				zap.String("wallet", alert.Wallet),
				zap.Error(err))
		}
	}
	return nil
}

func (m *MultiNotifier) Close() {
	for _, n := range m.notifiers {
		n.Close()
	}
}

// Len reports how many destinations are wired.
func (m *MultiNotifier) Len() int {
	return len(m.notifiers)
}
