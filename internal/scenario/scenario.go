// Package scenario scores candidate swing entry/exit pairs across a
// ladder of expiration snapshots.
package scenario

import (
	"math"
	"sort"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

// Scoring constants. Calibrated values; part of the observable contract.
const (
	// maxPairSnapshots bounds the combinatorics to the first snapshots.
	maxPairSnapshots = 5
	// maxScenarios limits the returned list.
	maxScenarios = 3

	baseProbability     = 55.0
	sentimentDeltaMult  = 0.4
	exposureTrendBonus  = 5.0
	exitSkewMult        = 0.2
	durationPenaltyMult = 2.0
	probabilityMin      = 35
	probabilityMax      = 92
	// highConvictionTier ranks before everything else regardless of
	// profit.
	highConvictionTier = 70
	// baseTargetDiscount shaves the exit for the conservative target.
	baseTargetDiscount = 0.995
)

// Generate scores every (entry, exit) snapshot pair with entry index <
// exit index, discards non-positive profits, and keeps the top three:
// high-conviction scenarios (probability ≥ 70) first, descending profit
// within each tier.
func Generate(snaps []chain.ExpirationSnapshot) []chain.SwingScenario {
	n := len(snaps)
	if n > maxPairSnapshots {
		n = maxPairSnapshots
	}

	var out []chain.SwingScenario
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if s, ok := score(snaps[i], snaps[j], j-i); ok {
				out = append(out, s)
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		aHigh := out[a].SuccessProbability >= highConvictionTier
		bHigh := out[b].SuccessProbability >= highConvictionTier
		if aHigh != bHigh {
			return aHigh
		}
		return out[a].BaseReturn > out[b].BaseReturn
	})

	if len(out) > maxScenarios {
		out = out[:maxScenarios]
	}
	return out
}

func score(entry, exit chain.ExpirationSnapshot, duration int) (chain.SwingScenario, bool) {
	entryLevel := math.Max(entry.PutWall, entry.ExpectedLower)
	exitLevel := math.Min(exit.CallWall, exit.ExpectedUpper)
	if entryLevel <= 0 {
		return chain.SwingScenario{}, false
	}

	baseTarget := exitLevel * baseTargetDiscount
	profit := (baseTarget - entryLevel) / entryLevel * 100
	if profit <= 0 {
		return chain.SwingScenario{}, false
	}

	sentimentDelta := exit.SentimentScore - entry.SentimentScore
	trend := -exposureTrendBonus
	if exit.TotalExposure > entry.TotalExposure {
		trend = exposureTrendBonus
	}
	exitSkew := float64(exit.PriceProbability.Up - exit.PriceProbability.Down)

	p := baseProbability +
		sentimentDeltaMult*sentimentDelta +
		trend +
		exitSkewMult*exitSkew -
		durationPenaltyMult*float64(duration)

	prob := int(math.Round(p))
	if prob < probabilityMin {
		prob = probabilityMin
	}
	if prob > probabilityMax {
		prob = probabilityMax
	}

	return chain.SwingScenario{
		EntryExpiration:    entry.Expiration,
		ExitExpiration:     exit.Expiration,
		EntryLevel:         entryLevel,
		ExitLevel:          baseTarget,
		ExtensionLevel:     exitLevel,
		BaseReturn:         profit,
		ExtensionReturn:    (exitLevel - entryLevel) / entryLevel * 100,
		SuccessProbability: prob,
	}, true
}
