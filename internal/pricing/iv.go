package pricing

import "math"

// Newton-Raphson inversion parameters. These match the observable contract
// of the IV repair step: the round-trip price error must land under
// ivTolerance for well-behaved inputs.
const (
	ivInitialGuess  = 0.20
	ivDiffStep      = 0.001
	ivMaxIterations = 20
	ivTolerance     = 0.0001
)

// ImpliedVolatility recovers the volatility that reprices an option to its
// last traded price. Newton-Raphson with a forward-difference derivative;
// never fails — a diverged or non-positive iteration result is clamped
// into [MinVol, MaxVol].
func ImpliedVolatility(isCall bool, marketPrice, spot, strike, rate, years float64) float64 {
	if marketPrice <= 0 || spot <= 0 || strike <= 0 || years <= 0 {
		return ClampVol(ivInitialGuess)
	}

	vol := ivInitialGuess
	for i := 0; i < ivMaxIterations; i++ {
		price := Price(isCall, spot, strike, rate, vol, years)
		diff := price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return ClampVol(vol)
		}

		bumped := Price(isCall, spot, strike, rate, vol+ivDiffStep, years)
		deriv := (bumped - price) / ivDiffStep
		if deriv == 0 || math.IsNaN(deriv) || math.IsInf(deriv, 0) {
			break
		}

		vol -= diff / deriv
		if math.IsNaN(vol) || math.IsInf(vol, 0) {
			return ClampVol(ivInitialGuess)
		}
	}

	return ClampVol(vol)
}
