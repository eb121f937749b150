// Package levels combines per-expiration snapshots into horizon-wide
// support/resistance levels and dashboard recommendation bands.
package levels

import (
	"math"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

// minWeightYears floors time-to-expiration in the weighting so same-day
// expirations keep a finite weight.
const minWeightYears = 1.0 / 365.0

// WeightedLevel folds (level, timeToExpiry) pairs into a single level with
// weight 1/sqrt(T): nearer expirations dominate, and the weight is
// monotonically decreasing in time-to-expiration. An explicit reduce over
// the ordered inputs; no hidden accumulator.
func WeightedLevel(levels, years []float64) float64 {
	var weightedSum, weightSum float64
	for i, level := range levels {
		w := 1 / math.Sqrt(math.Max(years[i], minWeightYears))
		weightedSum += level * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

// Aggregate builds the horizon support/resistance pair from the
// snapshots' put and call walls.
func Aggregate(snaps []chain.ExpirationSnapshot) chain.AggregateLevels {
	supports := make([]float64, len(snaps))
	resistances := make([]float64, len(snaps))
	years := make([]float64, len(snaps))
	for i, s := range snaps {
		supports[i] = s.PutWall
		resistances[i] = s.CallWall
		years[i] = s.TimeToExpiry
	}
	return chain.AggregateLevels{
		Support:    WeightedLevel(supports, years),
		Resistance: WeightedLevel(resistances, years),
	}
}
