package gex

import (
	"time"

	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/levels"
)

// BuildSnapshot derives one expiration's full market structure from its
// raw chain halves. Deterministic for identical inputs; recomputed in full
// per request with no incremental state.
func BuildSnapshot(calls, puts []chain.RawContract, spot float64, expiration, now time.Time, p Params) (chain.ExpirationSnapshot, chain.Diagnostics) {
	years := chain.YearsUntil(now, expiration)

	processed := make([]chain.ProcessedContract, 0, len(calls)+len(puts))
	diag := chain.Diagnostics{}

	var callExposure, putExposure float64
	for _, raw := range calls {
		pc := ProcessContract(raw, chain.Call, spot, years, p)
		callExposure += pc.Exposure
		processed = append(processed, pc)
		diag = countContract(diag, pc)
	}
	for _, raw := range puts {
		pc := ProcessContract(raw, chain.Put, spot, years, p)
		putExposure += pc.Exposure
		processed = append(processed, pc)
		diag = countContract(diag, pc)
	}

	callWall, putWall := Walls(processed, spot)
	flip := GammaFlip(processed, spot, years, p)
	sentiment := Sentiment(callExposure, putExposure)
	probability := Probabilities(processed)
	lower, upper := ExpectedMove(processed, spot, years, MoveStandard)

	snap := chain.ExpirationSnapshot{
		Expiration:        expiration,
		Spot:              spot,
		TimeToExpiry:      years,
		CallWall:          callWall,
		PutWall:           putWall,
		GammaFlip:         flip,
		VolatilityTrigger: (flip + putWall) / 2,
		CallExposure:      callExposure,
		PutExposure:       putExposure,
		TotalExposure:     callExposure + putExposure,
		SentimentScore:    sentiment,
		PriceProbability:  probability,
		ExpectedLower:     lower,
		ExpectedUpper:     upper,
	}
	snap.ExpectedPrice = levels.ExpectedPrice(
		sentiment, flip, snap.TotalExposure,
		putWall, callWall, lower, upper,
	)

	return snap, diag
}

func countContract(diag chain.Diagnostics, pc chain.ProcessedContract) chain.Diagnostics {
	diag.ContractsProcessed++
	if pc.IVRepaired {
		diag.IVRepaired++
	}
	if pc.OpenInterestProxied {
		diag.OpenInterestProxied++
	}
	return diag
}
