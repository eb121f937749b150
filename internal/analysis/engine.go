// Package analysis orchestrates the full pipeline: per-expiration
// snapshots fanned out across workers, fanned in, then aggregated into
// levels, bands, and scenarios.
package analysis

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/beta"
	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/gex"
	"github.com/dgnsrekt/gexlens/internal/levels"
	"github.com/dgnsrekt/gexlens/internal/scenario"
)

// ErrNoData marks a request with zero usable expirations. The caller
// decides whether that is fatal.
var ErrNoData = errors.New("no usable expirations")

// ExpirationChain is one expiration's raw chain halves as supplied by the
// market-data layer.
type ExpirationChain struct {
	Expiration time.Time
	Calls      []chain.RawContract
	Puts       []chain.RawContract
}

// Request is the full input for one analysis pass. Plain data; all I/O
// happens before this point.
type Request struct {
	Ticker       string
	CurrentPrice float64
	AsOf         time.Time
	Expirations  []ExpirationChain
}

// Result is the complete analysis output for one ticker. Headline fields
// (gamma flip, sentiment, probability) come from the nearest expiration.
type Result struct {
	Ticker string    `json:"ticker"`
	Spot   float64   `json:"spot"`
	AsOf   time.Time `json:"as_of"`

	Snapshots []chain.ExpirationSnapshot `json:"snapshots"`
	Levels    chain.AggregateLevels      `json:"levels"`

	GammaFlip   float64                `json:"gamma_flip"`
	Sentiment   float64                `json:"sentiment"`
	Probability chain.PriceProbability `json:"probability"`

	Bands     []levels.Band         `json:"bands"`
	Scenarios []chain.SwingScenario `json:"scenarios"`

	Projection *beta.Projection `json:"projection,omitempty"`

	Diagnostics chain.Diagnostics `json:"diagnostics"`
}

// Engine runs analysis requests over a bounded worker pool.
type Engine struct {
	params  gex.Params
	workers int
	logger  *zap.Logger
}

func NewEngine(params gex.Params, workers int, logger *zap.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{params: params, workers: workers, logger: logger}
}

type snapshotJob struct {
	index int
	chain ExpirationChain
}

type snapshotResult struct {
	index int
	snap  chain.ExpirationSnapshot
	diag  chain.Diagnostics
}

// Analyze runs the pipeline. Expirations are processed independently and
// in parallel; aggregation waits for every per-expiration result, then
// reassembles them in expiration order so the output is deterministic
// regardless of completion order.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	usable := make([]ExpirationChain, 0, len(req.Expirations))
	skipped := 0
	for _, exp := range req.Expirations {
		if len(exp.Calls)+len(exp.Puts) == 0 {
			skipped++
			continue
		}
		usable = append(usable, exp)
	}
	if len(usable) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(usable, func(i, j int) bool {
		return usable[i].Expiration.Before(usable[j].Expiration)
	})

	jobs := make(chan snapshotJob, len(usable))
	results := make(chan snapshotResult, len(usable))

	workers := e.workers
	if workers > len(usable) {
		workers = len(usable)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				snap, diag := gex.BuildSnapshot(
					job.chain.Calls, job.chain.Puts,
					req.CurrentPrice, job.chain.Expiration, req.AsOf,
					e.params,
				)
				results <- snapshotResult{index: job.index, snap: snap, diag: diag}
			}
		}()
	}

	for i, exp := range usable {
		jobs <- snapshotJob{index: i, chain: exp}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	snaps := make([]chain.ExpirationSnapshot, len(usable))
	seen := make([]bool, len(usable))
	diag := chain.Diagnostics{ExpirationsSkipped: skipped}
	for r := range results {
		snaps[r.index] = r.snap
		seen[r.index] = true
		diag = diag.Merge(r.diag)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ok := range seen {
		if !ok {
			return nil, context.Canceled
		}
	}
	diag.ExpirationsUsed = len(snaps)

	agg := levels.Aggregate(snaps)
	bands := levels.Bands(agg.Support, agg.Resistance, req.CurrentPrice)

	res := &Result{
		Ticker:      req.Ticker,
		Spot:        req.CurrentPrice,
		AsOf:        req.AsOf,
		Snapshots:   snaps,
		Levels:      agg,
		GammaFlip:   snaps[0].GammaFlip,
		Sentiment:   snaps[0].SentimentScore,
		Probability: snaps[0].PriceProbability,
		Bands:       bands,
		Scenarios:   scenario.Generate(snaps),
		Diagnostics: diag,
	}

	e.logger.Debug("analysis complete",
		zap.String("ticker", req.Ticker),
		zap.Float64("spot", req.CurrentPrice),
		zap.Int("expirations", len(snaps)),
		zap.Int("skipped", skipped),
		zap.Float64("gammaFlip", res.GammaFlip),
		zap.Float64("sentiment", res.Sentiment),
	)

	return res, nil
}
