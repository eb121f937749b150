package gex

import (
	"math"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

const (
	// moneynessWindow bounds which contracts count as near-the-money for
	// the average IV.
	moneynessWindow = 0.05
	// fallbackIV applies when no contract sits inside the window.
	fallbackIV = 0.25
	// minMoveYears keeps same-day expirations from collapsing the move
	// to zero.
	minMoveYears = 1.0 / 365.0

	// MoveStandard is the fraction for the one-period estimate,
	// MoveTight the high-confidence variant.
	MoveStandard = 0.4
	MoveTight    = 0.25
)

// ExpectedMove projects a price band from the average near-the-money
// implied volatility. fraction selects the estimate variant (MoveStandard
// or MoveTight).
func ExpectedMove(contracts []chain.ProcessedContract, spot, years, fraction float64) (lower, upper float64) {
	var sum float64
	var n int
	for _, c := range contracts {
		if spot <= 0 {
			break
		}
		if math.Abs(c.Strike-spot)/spot <= moneynessWindow {
			sum += c.ImpliedVolatility
			n++
		}
	}

	avgIV := fallbackIV
	if n > 0 {
		avgIV = sum / float64(n)
	}

	move := spot * avgIV * math.Sqrt(math.Max(years, minMoveYears)) * fraction
	if math.IsNaN(move) || math.IsInf(move, 0) {
		move = 0
	}
	return spot - move, spot + move
}
