package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/analysis"
)

const analysisGroupSuffix = "_analysis"

// IsValidAnalysisGroup validates group names of the form {TICKER}_analysis.
func IsValidAnalysisGroup(group string) bool {
	ticker := strings.TrimSuffix(group, analysisGroupSuffix)
	return ticker != "" && ticker != group && ticker == strings.ToUpper(ticker)
}

// AnalysisStreamer periodically recomputes the analysis for every
// subscribed ticker and broadcasts the result to its group. The latest
// result also lands in the store for the HTTP layer.
type AnalysisStreamer struct {
	hub      *Hub
	service  *analysis.Service
	store    *analysis.LatestStore
	interval time.Duration
	logger   *zap.Logger
}

func NewAnalysisStreamer(hub *Hub, service *analysis.Service, store *analysis.LatestStore, interval time.Duration, logger *zap.Logger) *AnalysisStreamer {
	return &AnalysisStreamer{
		hub:      hub,
		service:  service,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the streaming loop. Call in a goroutine.
// Returns when context is cancelled.
func (s *AnalysisStreamer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("analysis streamer started",
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("analysis streamer stopping")
			return

		case <-ticker.C:
			s.broadcastAll(ctx)
		}
	}
}

// broadcastAll refreshes and pushes analysis for every active group.
func (s *AnalysisStreamer) broadcastAll(ctx context.Context) {
	groups := s.hub.GetActiveGroups()
	if len(groups) == 0 {
		return
	}

	for _, group := range groups {
		symbol := strings.TrimSuffix(group, analysisGroupSuffix)
		if symbol == "" || symbol == group {
			continue
		}

		result, err := s.service.Analyze(ctx, symbol, "", 0)
		if err != nil {
			s.logger.Debug("analysis refresh failed",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
			continue
		}
		s.store.Put(symbol, result)

		payload, err := json.Marshal(result)
		if err != nil {
			s.logger.Warn("failed to marshal analysis result",
				zap.String("ticker", symbol),
				zap.Error(err),
			)
			continue
		}

		s.hub.BroadcastData(group, payload)

		s.logger.Debug("broadcast analysis",
			zap.String("ticker", symbol),
			zap.Int("payloadSize", len(payload)),
		)
	}
}
