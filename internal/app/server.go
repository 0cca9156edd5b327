package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"whalewatch/config"
)

const historyDefaultLimit = 100

// Server exposes the pipeline over a small JSON API.
type Server struct {
	logger  *zap.Logger
	service *Service
	http    *http.Server
}

func NewServer(logger *zap.Logger, cfg config.ServerConfig, service *Service) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:  logger,
		service: service,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/recent-bets", s.handleRecentBets)
	mux.HandleFunc("GET /api/wallets/{addr}/stats", s.handleWalletStats)
	mux.HandleFunc("GET /api/wallets/{addr}/history", s.handleWalletHistory)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("api server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		s.logger.Debug("request handled",
			zap.String("requestId", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecentBets(w http.ResponseWriter, r *http.Request) {
	var opts RankedBetsOptions

	q := r.URL.Query()
	if raw := q.Get("minBet"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid minBet")
			return
		}
		opts.MinBetUSD = v
	}
	if raw := q.Get("hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid hours")
			return
		}
		opts.Window = time.Duration(v * float64(time.Hour))
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Cap = v
	}
	opts.Sort = SortKey(q.Get("sort"))

	result, err := s.service.GetRankedBets(r.Context(), opts)
	if err != nil {
		s.logger.Error("recent bets failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "trade feed unavailable")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWalletStats(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("addr")

	stats, err := s.service.GetWalletStats(r.Context(), addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleWalletHistory(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("addr")

	limit := historyDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	history, err := s.service.GetWalletHistory(r.Context(), addr, limit)
	if err != nil {
		s.logger.Error("wallet history failed", zap.String("wallet", addr), zap.Error(err))
		writeError(w, http.StatusBadGateway, "wallet history unavailable")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, history)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
