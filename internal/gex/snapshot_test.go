package gex

import (
	"math"
	"testing"
	"time"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

func TestBuildSnapshot_EndToEnd(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	expiration := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC) // ~0.02 years out
	spot := 405.0

	calls := []chain.RawContract{
		{Strike: 400, ImpliedVolatility: 0.20, OpenInterest: 1000, LastPrice: 7.5, Expiration: expiration},
		{Strike: 410, ImpliedVolatility: 0.22, OpenInterest: 500, LastPrice: 2.1, Expiration: expiration},
	}
	puts := []chain.RawContract{
		{Strike: 390, ImpliedVolatility: 0.25, OpenInterest: 1200, LastPrice: 1.4, Expiration: expiration},
	}

	snap, diag := BuildSnapshot(calls, puts, spot, expiration, now, DefaultParams())

	if snap.CallWall != 400 {
		t.Errorf("call wall = %f, want 400", snap.CallWall)
	}
	if snap.PutWall != 390 {
		t.Errorf("put wall = %f, want 390", snap.PutWall)
	}

	if snap.CallExposure < 0 {
		t.Errorf("call exposure %f should be non-negative", snap.CallExposure)
	}
	if snap.PutExposure > 0 {
		t.Errorf("put exposure %f should be non-positive", snap.PutExposure)
	}
	if math.Abs(snap.TotalExposure-(snap.CallExposure+snap.PutExposure)) > 1e-6 {
		t.Error("total exposure must equal call + put exposure")
	}

	if snap.SentimentScore < -100 || snap.SentimentScore > 100 {
		t.Errorf("sentiment %f out of range", snap.SentimentScore)
	}
	// Sentiment sign must agree with the exposure balance.
	if snap.TotalExposure > 0 && snap.SentimentScore < 0 {
		t.Error("positive net exposure with negative sentiment")
	}
	if snap.TotalExposure < 0 && snap.SentimentScore > 0 {
		t.Error("negative net exposure with positive sentiment")
	}

	if sum := snap.PriceProbability.Up + snap.PriceProbability.Down + snap.PriceProbability.Neutral; sum != 100 {
		t.Errorf("probability sum = %d, want 100", sum)
	}

	if snap.ExpectedLower >= spot || snap.ExpectedUpper <= spot {
		t.Errorf("expected band (%f, %f) must straddle spot", snap.ExpectedLower, snap.ExpectedUpper)
	}
	if snap.ExpectedPrice < snap.ExpectedLower || snap.ExpectedPrice > snap.ExpectedUpper {
		t.Errorf("expected price %f outside band (%f, %f)",
			snap.ExpectedPrice, snap.ExpectedLower, snap.ExpectedUpper)
	}

	low := spot * (1 - DefaultParams().ScanWidth)
	high := spot * (1 + DefaultParams().ScanWidth)
	if snap.GammaFlip < low || snap.GammaFlip > high {
		t.Errorf("gamma flip %f outside scan window (%f, %f)", snap.GammaFlip, low, high)
	}

	wantTrigger := (snap.GammaFlip + snap.PutWall) / 2
	if math.Abs(snap.VolatilityTrigger-wantTrigger) > 1e-9 {
		t.Errorf("volatility trigger = %f, want flip/put-wall midpoint %f",
			snap.VolatilityTrigger, wantTrigger)
	}

	if diag.ContractsProcessed != 3 {
		t.Errorf("diagnostics counted %d contracts, want 3", diag.ContractsProcessed)
	}
	if diag.IVRepaired != 0 {
		t.Errorf("no IVs should need repair, got %d", diag.IVRepaired)
	}
	if diag.OpenInterestProxied != 0 {
		t.Errorf("no OI should be proxied, got %d", diag.OpenInterestProxied)
	}
}

func TestBuildSnapshot_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	expiration := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	calls := []chain.RawContract{
		{Strike: 400, ImpliedVolatility: 0.20, OpenInterest: 1000, Expiration: expiration},
	}
	puts := []chain.RawContract{
		{Strike: 390, ImpliedVolatility: 0.25, OpenInterest: 1200, Expiration: expiration},
	}

	a, _ := BuildSnapshot(calls, puts, 405, expiration, now, DefaultParams())
	b, _ := BuildSnapshot(calls, puts, 405, expiration, now, DefaultParams())
	if a != b {
		t.Error("identical inputs must produce identical snapshots")
	}
}

func TestBuildSnapshot_EmptyChain(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	expiration := now.AddDate(0, 0, 14)

	snap, diag := BuildSnapshot(nil, nil, 405, expiration, now, DefaultParams())
	if snap.GammaFlip != 405 {
		t.Errorf("empty chain flip = %f, want spot", snap.GammaFlip)
	}
	if snap.CallWall != 405 || snap.PutWall != 405 {
		t.Errorf("empty chain walls = (%f, %f), want spot", snap.CallWall, snap.PutWall)
	}
	if diag.ContractsProcessed != 0 {
		t.Errorf("processed %d contracts on empty chain", diag.ContractsProcessed)
	}
}
