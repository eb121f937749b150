// Package gex turns raw option chains into dealer gamma exposure records
// and per-expiration market-structure snapshots.
package gex

import (
	"math"

	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/pricing"
)

// Params holds the pricing-model inputs shared by every contract in a
// request. Values come from configuration; defaults match the calibrated
// constants the downstream numbers were validated against.
type Params struct {
	RiskFreeRate  float64
	DividendYield float64
	MinVol        float64
	MaxVol        float64
	// ScanWidth is the gamma-flip search window as a fraction of spot.
	ScanWidth float64
}

// DefaultParams returns the canonical parameter set.
func DefaultParams() Params {
	return Params{
		RiskFreeRate:  0.045,
		DividendYield: 0,
		MinVol:        pricing.MinVol,
		MaxVol:        pricing.MaxVol,
		ScanWidth:     0.10,
	}
}

const (
	// contractMultiplier is the standard equity-option share multiplier.
	contractMultiplier = 100
	// pctMove normalizes exposure to the dollar impact of a 1% spot move.
	pctMove = 0.01
	// oiVolumeProxy is the fraction of volume substituted when open
	// interest is missing. Documented limitation: the proxy may misstate
	// actual dealer positioning.
	oiVolumeProxy = 0.1
	// minUsableIV is the floor under which a reported IV is treated as
	// unreliable and recovered from the last traded price instead.
	minUsableIV = 0.001
)

// ProcessContract normalizes one raw contract into a priced exposure
// record. Never fails for finite inputs: pricing-model breakdowns fall
// back to zero gamma rather than propagating an error.
func ProcessContract(raw chain.RawContract, side chain.Side, spot, years float64, p Params) chain.ProcessedContract {
	if years < chain.EpsilonYears {
		years = chain.EpsilonYears
	}

	effOI := raw.OpenInterest
	proxied := false
	if effOI <= 0 {
		effOI = int64(math.Round(float64(raw.Volume) * oiVolumeProxy))
		proxied = true
	}
	if effOI <= 0 {
		effOI = 1
	}

	iv := raw.ImpliedVolatility
	repaired := false
	if math.IsNaN(iv) || math.IsInf(iv, 0) || iv < minUsableIV {
		iv = pricing.ImpliedVolatility(side == chain.Call, raw.LastPrice, spot, raw.Strike, p.RiskFreeRate, years)
		repaired = true
	}
	iv = clampVol(iv, p)

	adjSpot := spot * math.Exp(-p.DividendYield*years)
	gamma := math.Abs(pricing.Gamma(adjSpot, raw.Strike, p.RiskFreeRate, iv, years))

	exposure := side.Sign() * gamma * float64(effOI) * contractMultiplier * spot * spot * pctMove
	if math.IsNaN(exposure) || math.IsInf(exposure, 0) {
		gamma = 0
		exposure = 0
	}

	out := raw
	out.ImpliedVolatility = iv

	return chain.ProcessedContract{
		RawContract:           out,
		Side:                  side,
		Gamma:                 gamma,
		Exposure:              exposure,
		EffectiveOpenInterest: effOI,
		IVRepaired:            repaired,
		OpenInterestProxied:   proxied,
	}
}

func clampVol(vol float64, p Params) float64 {
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return p.MinVol
	}
	if vol < p.MinVol {
		return p.MinVol
	}
	if vol > p.MaxVol {
		return p.MaxVol
	}
	return vol
}
