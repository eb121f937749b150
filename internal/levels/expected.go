package levels

import "math"

// Bias weights for the gamma-adjusted expected price. Calibrated values;
// part of the observable contract.
const (
	sentimentBiasWeight = 0.3
	gammaBiasWeight     = 0.2
	combinedBiasCap     = 0.35
)

// ExpectedPrice biases the midpoint of the realistic trading range toward
// sentiment and the gamma flip. The realistic range is the overlap of the
// wall levels and the expected-move band; a degenerate overlap returns its
// midpoint unmodified.
func ExpectedPrice(sentiment, gammaFlip, totalExposure, putWall, callWall, bandLower, bandUpper float64) float64 {
	rangeLow := math.Max(putWall, bandLower)
	rangeHigh := math.Min(callWall, bandUpper)

	rangeMid := (rangeLow + rangeHigh) / 2
	rangeHalf := (rangeHigh - rangeLow) / 2
	if rangeHalf <= 0 {
		return rangeMid
	}

	sentimentBias := sentiment / 100 * sentimentBiasWeight

	gammaBiasRaw := clamp((gammaFlip-rangeMid)/rangeHalf, -1, 1)
	gammaBias := gammaBiasRaw * sign(totalExposure) * gammaBiasWeight

	combined := clamp(sentimentBias+gammaBias, -combinedBiasCap, combinedBiasCap)
	return rangeMid + rangeHalf*combined
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
