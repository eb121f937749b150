package gex

import (
	"math"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

const (
	flipMaxIterations = 15
	// flipConvergence is the absolute net exposure treated as a zero
	// crossing.
	flipConvergence = 0.1
)

// NetExposureAt reprices every contract at a hypothetical spot and sums
// the signed exposures. Gamma is recomputed at each probe spot; the stored
// exposures were computed at the real spot and do not apply here.
func NetExposureAt(contracts []chain.ProcessedContract, spot, years float64, p Params) float64 {
	var total float64
	for _, c := range contracts {
		pc := ProcessContract(c.RawContract, c.Side, spot, years, p)
		total += pc.Exposure
	}
	return total
}

// GammaFlip locates the spot price at which net exposure crosses zero,
// searching a ±ScanWidth window around the current spot by bisection.
//
// With no crossing inside the window it returns the bound closest to zero
// exposure. An empty contract set leaves no crossing definable and returns
// spot unchanged.
func GammaFlip(contracts []chain.ProcessedContract, spot, years float64, p Params) float64 {
	if len(contracts) == 0 {
		return spot
	}

	width := p.ScanWidth
	if width <= 0 {
		width = DefaultParams().ScanWidth
	}

	low := spot * (1 - width)
	high := spot * (1 + width)
	lowVal := NetExposureAt(contracts, low, years, p)
	highVal := NetExposureAt(contracts, high, years, p)

	// Same sign at both bounds: no crossing in range, return the closest
	// approach to zero.
	if lowVal*highVal > 0 {
		if math.Abs(lowVal) <= math.Abs(highVal) {
			return low
		}
		return high
	}

	for i := 0; i < flipMaxIterations; i++ {
		mid := (low + high) / 2
		midVal := NetExposureAt(contracts, mid, years, p)

		if math.Abs(midVal) < flipConvergence {
			return mid
		}

		// low and mid on the same side means the crossing sits in the
		// upper half.
		if (lowVal < 0) == (midVal < 0) {
			low = mid
			lowVal = midVal
		} else {
			high = mid
		}
	}

	return (low + high) / 2
}
