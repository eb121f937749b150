package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/beta"
	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/marketdata"
)

// Service glues the market-data boundary to the analytics engine: it
// fetches quote, expirations, and chains, runs the pipeline, and optionally
// attaches a beta-adjusted projection against a benchmark.
type Service struct {
	provider       marketdata.Provider
	engine         *Engine
	calendar       *chain.MarketCalendar
	maxExpirations int
	logger         *zap.Logger
}

func NewService(provider marketdata.Provider, engine *Engine, calendar *chain.MarketCalendar, maxExpirations int, logger *zap.Logger) *Service {
	if maxExpirations < 1 {
		maxExpirations = 1
	}
	return &Service{
		provider:       provider,
		engine:         engine,
		calendar:       calendar,
		maxExpirations: maxExpirations,
		logger:         logger,
	}
}

// Analyze runs the full pipeline for a ticker. With a non-empty benchmark
// it also runs the benchmark's pipeline, estimates beta over the lookback,
// and projects the ticker's target from the benchmark's expected price.
func (s *Service) Analyze(ctx context.Context, ticker, benchmark string, betaMonths int) (*Result, error) {
	res, err := s.analyzeTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if benchmark == "" || benchmark == ticker {
		return res, nil
	}

	benchRes, err := s.analyzeTicker(ctx, benchmark)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", benchmark, err)
	}

	est, err := s.Beta(ctx, ticker, benchmark, betaMonths)
	if err != nil {
		return nil, err
	}

	benchTarget := benchRes.Snapshots[0].ExpectedPrice
	proj := beta.Project(res.Spot, est, benchRes.Spot, benchTarget)
	proj.Probability = benchRes.Probability
	if est.Beta < 0 {
		proj.Probability = beta.SwapProbability(benchRes.Probability)
	}
	res.Projection = &proj

	return res, nil
}

// Beta estimates the ticker's beta to a benchmark over a lookback of
// 1–24 months.
func (s *Service) Beta(ctx context.Context, ticker, benchmark string, months int) (chain.BetaEstimate, error) {
	if months < 1 {
		months = 1
	}
	if months > 24 {
		months = 24
	}

	tickerCloses, err := s.provider.GetDailyCloses(ctx, ticker, months)
	if err != nil {
		return chain.BetaEstimate{}, fmt.Errorf("history %s: %w", ticker, err)
	}
	benchCloses, err := s.provider.GetDailyCloses(ctx, benchmark, months)
	if err != nil {
		return chain.BetaEstimate{}, fmt.Errorf("history %s: %w", benchmark, err)
	}

	return beta.Estimate(beta.Returns(tickerCloses), beta.Returns(benchCloses)), nil
}

func (s *Service) analyzeTicker(ctx context.Context, ticker string) (*Result, error) {
	quote, err := s.provider.GetQuote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", ticker, err)
	}

	dates, err := s.provider.GetExpirations(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("expirations %s: %w", ticker, err)
	}

	now := quote.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	tradable := s.calendar.TradingExpirations(now, dates)
	if len(tradable) > s.maxExpirations {
		tradable = tradable[:s.maxExpirations]
	}

	expirations := make([]ExpirationChain, 0, len(tradable))
	for _, d := range tradable {
		oc, err := s.provider.GetOptionChain(ctx, ticker, d)
		if err != nil {
			s.logger.Warn("chain fetch failed, skipping expiration",
				zap.String("ticker", ticker),
				zap.Time("expiration", d),
				zap.Error(err),
			)
			continue
		}
		expiration := oc.Expiration
		if expiration.IsZero() {
			expiration = d
		}
		expirations = append(expirations, ExpirationChain{
			Expiration: expiration,
			Calls:      oc.Calls,
			Puts:       oc.Puts,
		})
	}

	return s.engine.Analyze(ctx, Request{
		Ticker:       ticker,
		CurrentPrice: quote.Price,
		AsOf:         now,
		Expirations:  expirations,
	})
}
