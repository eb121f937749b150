package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/gex"
)

func testRequest(now time.Time) Request {
	mkChain := func(daysOut int, callStrike, putStrike float64) ExpirationChain {
		exp := now.AddDate(0, 0, daysOut)
		return ExpirationChain{
			Expiration: exp,
			Calls: []chain.RawContract{
				{Strike: callStrike, ImpliedVolatility: 0.2, OpenInterest: 1000, Expiration: exp},
			},
			Puts: []chain.RawContract{
				{Strike: putStrike, ImpliedVolatility: 0.25, OpenInterest: 1200, Expiration: exp},
			},
		}
	}
	return Request{
		Ticker:       "SPY",
		CurrentPrice: 405,
		AsOf:         now,
		Expirations: []ExpirationChain{
			mkChain(7, 400, 390),
			mkChain(14, 402, 392),
			mkChain(28, 404, 394),
		},
	}
}

func TestEngine_Analyze(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	engine := NewEngine(gex.DefaultParams(), 4, zap.NewNop())

	res, err := engine.Analyze(context.Background(), testRequest(now))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(res.Snapshots) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(res.Snapshots))
	}
	for i := 1; i < len(res.Snapshots); i++ {
		if !res.Snapshots[i-1].Expiration.Before(res.Snapshots[i].Expiration) {
			t.Error("snapshots not in expiration order")
		}
	}

	// Headline fields mirror the nearest expiration.
	if res.GammaFlip != res.Snapshots[0].GammaFlip {
		t.Error("headline gamma flip must come from the nearest snapshot")
	}
	if res.Sentiment != res.Snapshots[0].SentimentScore {
		t.Error("headline sentiment must come from the nearest snapshot")
	}
	if res.Probability != res.Snapshots[0].PriceProbability {
		t.Error("headline probability must come from the nearest snapshot")
	}

	if len(res.Bands) != 6 {
		t.Errorf("got %d bands, want 6", len(res.Bands))
	}
	if res.Levels.Support <= 0 || res.Levels.Resistance <= 0 {
		t.Errorf("degenerate aggregate levels: %+v", res.Levels)
	}
	if res.Diagnostics.ContractsProcessed != 6 {
		t.Errorf("diagnostics processed %d, want 6", res.Diagnostics.ContractsProcessed)
	}
	if res.Diagnostics.ExpirationsUsed != 3 {
		t.Errorf("diagnostics used %d expirations, want 3", res.Diagnostics.ExpirationsUsed)
	}
}

func TestEngine_DeterministicAcrossWorkerCounts(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req := testRequest(now)

	one, err := NewEngine(gex.DefaultParams(), 1, zap.NewNop()).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("workers=1: %v", err)
	}
	eight, err := NewEngine(gex.DefaultParams(), 8, zap.NewNop()).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("workers=8: %v", err)
	}

	if !reflect.DeepEqual(one.Snapshots, eight.Snapshots) {
		t.Error("snapshot output depends on worker count")
	}
	if !reflect.DeepEqual(one.Bands, eight.Bands) {
		t.Error("band output depends on worker count")
	}
}

func TestEngine_EmptyExpirationsSkipped(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req := testRequest(now)
	req.Expirations = append(req.Expirations, ExpirationChain{
		Expiration: now.AddDate(0, 0, 35),
	})

	res, err := NewEngine(gex.DefaultParams(), 2, zap.NewNop()).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Snapshots) != 3 {
		t.Errorf("got %d snapshots, want empty expiration skipped", len(res.Snapshots))
	}
	if res.Diagnostics.ExpirationsSkipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Diagnostics.ExpirationsSkipped)
	}
}

func TestEngine_NoUsableData(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req := Request{
		Ticker:       "SPY",
		CurrentPrice: 405,
		AsOf:         now,
		Expirations: []ExpirationChain{
			{Expiration: now.AddDate(0, 0, 7)},
		},
	}

	_, err := NewEngine(gex.DefaultParams(), 2, zap.NewNop()).Analyze(context.Background(), req)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestEngine_UnsortedInputStillOrdered(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req := testRequest(now)
	req.Expirations[0], req.Expirations[2] = req.Expirations[2], req.Expirations[0]

	res, err := NewEngine(gex.DefaultParams(), 2, zap.NewNop()).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i := 1; i < len(res.Snapshots); i++ {
		if !res.Snapshots[i-1].Expiration.Before(res.Snapshots[i].Expiration) {
			t.Fatal("snapshots must be sorted by expiration regardless of input order")
		}
	}
}

func TestLatestStore(t *testing.T) {
	store := NewLatestStore()

	if _, ok := store.Get("SPY"); ok {
		t.Error("empty store should miss")
	}

	store.Put("SPY", &Result{Ticker: "SPY", Spot: 405})
	store.Put("QQQ", &Result{Ticker: "QQQ", Spot: 350})
	store.Put("SPY", &Result{Ticker: "SPY", Spot: 406})

	got, ok := store.Get("SPY")
	if !ok || got.Spot != 406 {
		t.Errorf("Get(SPY) = %+v, %v; want replaced result", got, ok)
	}

	if tickers := store.Tickers(); !reflect.DeepEqual(tickers, []string{"QQQ", "SPY"}) {
		t.Errorf("Tickers() = %v, want sorted [QQQ SPY]", tickers)
	}
}
