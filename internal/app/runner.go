package app

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	clts "whalewatch/clients"
	"whalewatch/config"
)

// Build info populated from embedded VCS info at init time.
var (
	BuildCommit = "dev"
	BuildTime   = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if setting.Value != "" {
					BuildCommit = setting.Value
				}
			case "vcs.time":
				BuildTime = setting.Value
			}
		}
	}
}

// Runner wires the pipeline, the API server, and the background refresh loop.
type Runner struct {
	logger  *zap.Logger
	cfg     *config.Config
	clients *clts.Clients
	service *Service
	alerter *BetAlerter
	server  *Server
}

func NewRunner(logger *zap.Logger, cfg *config.Config, clients *clts.Clients, allowlist config.Allowlist) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	var source LabelSource
	if clients.Nansen.HasKey() {
		source = clients.Nansen
	}

	resolver := NewWalletLabelResolver(logger, source, allowlist, cfg.Pipeline.DerivedCap)
	stats := NewStatsAggregator(logger, clients.Polymarket, cfg.Pipeline.StatsCacheTTL)
	service := NewService(logger, cfg, clients.Polymarket, resolver, stats)

	r := &Runner{
		logger:  logger,
		cfg:     cfg,
		clients: clients,
		service: service,
		alerter: NewBetAlerter(logger, cfg.Alerts, clients.Notifier),
	}

	if cfg.Server.Enabled {
		r.server = NewServer(logger, cfg.Server, service)
	}

	return r
}

// Run starts the API server and the refresh loop, blocking until the context
// is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("starting whalewatch",
		zap.String("commit", BuildCommit),
		zap.String("buildTime", BuildTime),
		zap.Duration("refreshInterval", r.cfg.Pipeline.RefreshInterval))

	serverErr := make(chan error, 1)
	if r.server != nil {
		go func() {
			if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	r.refresh(ctx)

	ticker := time.NewTicker(r.cfg.Pipeline.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case err := <-serverErr:
			return err
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh runs one pipeline cycle and pushes alerts for new bets. A failed
// cycle logs and waits for the next tick.
func (r *Runner) refresh(ctx context.Context) {
	result, err := r.service.GetRankedBets(ctx, RankedBetsOptions{})
	if err != nil {
		r.logger.Warn("refresh cycle failed", zap.Error(err))
		return
	}

	r.alerter.ProcessBets(result.Bets)
}

func (r *Runner) shutdown() {
	r.logger.Info("shutting down")

	if r.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.server.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("server shutdown failed", zap.Error(err))
		}
	}

	r.clients.Close()
}
