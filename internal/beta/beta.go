// Package beta estimates a regression beta between two instruments and
// projects one price from the other's target. Negative betas carry inverse
// semantics expressed through polarity flags, never text rewriting.
package beta

import (
	"math"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

// minObservations is the overlap below which the estimator returns the
// neutral default.
const minObservations = 10

// neutralBeta is the fallback for short samples and zero-variance
// benchmarks.
const neutralBeta = 1.0

// Returns converts a daily close series into simple daily returns.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// Estimate computes Cov(ticker, benchmark)/Var(benchmark) over two aligned
// return series via the standard two-pass formula. Fewer than ten
// overlapping observations or a zero-variance benchmark yields the neutral
// default beta of 1.0.
func Estimate(tickerReturns, benchReturns []float64) chain.BetaEstimate {
	n := len(tickerReturns)
	if len(benchReturns) < n {
		n = len(benchReturns)
	}
	if n < minObservations {
		return chain.BetaEstimate{Beta: neutralBeta, SampleSize: n}
	}

	var tickerMean, benchMean float64
	for i := 0; i < n; i++ {
		tickerMean += tickerReturns[i]
		benchMean += benchReturns[i]
	}
	tickerMean /= float64(n)
	benchMean /= float64(n)

	var cov, variance float64
	for i := 0; i < n; i++ {
		db := benchReturns[i] - benchMean
		cov += (tickerReturns[i] - tickerMean) * db
		variance += db * db
	}

	if variance == 0 {
		return chain.BetaEstimate{Beta: neutralBeta, SampleSize: n}
	}

	b := cov / variance
	if math.IsNaN(b) || math.IsInf(b, 0) {
		b = neutralBeta
	}
	return chain.BetaEstimate{Beta: b, SampleSize: n}
}

// Projection is a beta-adjusted price target for a correlated instrument.
type Projection struct {
	Target     float64         `json:"target"`
	Beta       float64         `json:"beta"`
	SampleSize int             `json:"sample_size"`
	Direction  chain.Direction `json:"direction"`
	// UpperRole and LowerRole orient the instrument's wall levels. For a
	// negative beta the roles invert: the benchmark's upside maps to this
	// instrument's downside.
	UpperRole chain.Role `json:"upper_role"`
	LowerRole chain.Role `json:"lower_role"`
	// Probability is the benchmark's directional split oriented for this
	// instrument (legs swapped when beta is negative).
	Probability chain.PriceProbability `json:"probability"`
}

// Project maps a benchmark target onto the correlated instrument:
// target = current × (1 + beta × (benchTarget/benchCurrent − 1)).
func Project(current float64, est chain.BetaEstimate, benchCurrent, benchTarget float64) Projection {
	proj := Projection{
		Beta:       est.Beta,
		SampleSize: est.SampleSize,
		Target:     current,
		Direction:  chain.DirectionFlat,
		UpperRole:  chain.RoleResistance,
		LowerRole:  chain.RoleSupport,
	}
	if benchCurrent == 0 {
		return proj
	}

	benchMove := benchTarget/benchCurrent - 1
	target := current * (1 + est.Beta*benchMove)
	if math.IsNaN(target) || math.IsInf(target, 0) {
		target = current
	}
	proj.Target = target

	switch {
	case target > current:
		proj.Direction = chain.DirectionUp
	case target < current:
		proj.Direction = chain.DirectionDown
	}

	if est.Beta < 0 {
		proj.UpperRole, proj.LowerRole = chain.RoleSupport, chain.RoleResistance
	}
	return proj
}

// SwapProbability inverts the directional legs for a negative-beta
// instrument; the neutral leg is polarity-free.
func SwapProbability(p chain.PriceProbability) chain.PriceProbability {
	return chain.PriceProbability{Up: p.Down, Down: p.Up, Neutral: p.Neutral}
}
