package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/analysis"
	"github.com/dgnsrekt/gexlens/internal/config"
	"github.com/dgnsrekt/gexlens/internal/marketdata"
)

const defaultBetaMonths = 6

type Server struct {
	service *analysis.Service
	store   *analysis.LatestStore
	config  *config.Config
	logger  *zap.Logger
}

func NewServer(service *analysis.Service, store *analysis.LatestStore, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		service: service,
		store:   store,
		config:  cfg,
		logger:  logger,
	}
}

// GetHealth reports service status and the configured ticker set.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"tickers": s.config.Tickers,
	})
}

// GetTickers lists tickers with a streamed analysis in the store.
func (s *Server) GetTickers(w http.ResponseWriter, r *http.Request) {
	tickers := s.store.Tickers()
	writeJSON(w, http.StatusOK, map[string]any{
		"tickers": tickers,
		"count":   len(tickers),
	})
}

// GetAnalysis runs the full pipeline for the ticker. The optional
// benchmark query attaches a beta-adjusted projection.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	benchmark := r.URL.Query().Get("benchmark")
	months := queryInt(r, "months", defaultBetaMonths)

	s.logger.Debug("analysis request",
		zap.String("ticker", ticker),
		zap.String("benchmark", benchmark),
		zap.Int("months", months),
	)

	result, err := s.service.Analyze(r.Context(), ticker, benchmark, months)
	if err != nil {
		s.writeError(w, ticker, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetBeta returns the regression beta for ticker against the benchmark.
func (s *Server) GetBeta(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	benchmark := r.URL.Query().Get("benchmark")
	months := queryInt(r, "months", defaultBetaMonths)

	est, err := s.service.Beta(r.Context(), ticker, benchmark, months)
	if err != nil {
		s.writeError(w, ticker, err)
		return
	}

	writeJSON(w, http.StatusOK, est)
}

func (s *Server) writeError(w http.ResponseWriter, ticker string, err error) {
	switch {
	case errors.Is(err, marketdata.ErrNotFound), errors.Is(err, analysis.ErrNoData):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "no data for " + ticker,
		})
	default:
		s.logger.Error("request failed", zap.String("ticker", ticker), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
