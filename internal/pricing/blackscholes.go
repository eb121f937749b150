// Package pricing implements the Black-Scholes pricing kernel used by the
// exposure processor. Everything here is pure float math over finite
// inputs; degenerate inputs produce documented fallbacks instead of errors.
package pricing

import "math"

// Volatility clamp bounds. Repaired or diverged implied volatilities are
// forced back into this range.
const (
	MinVol = 1e-4
	MaxVol = 5.0
)

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func d1(spot, strike, rate, vol, years float64) float64 {
	return (math.Log(spot/strike) + (rate+vol*vol/2)*years) / (vol * math.Sqrt(years))
}

// Price returns the Black-Scholes value of a European option. Dividend
// yield is expected to be folded into spot by the caller (spot·e^(−qT)).
// Returns intrinsic value when the model degenerates.
func Price(isCall bool, spot, strike, rate, vol, years float64) float64 {
	if spot <= 0 || strike <= 0 || vol <= 0 || years <= 0 {
		return intrinsic(isCall, spot, strike)
	}

	dOne := d1(spot, strike, rate, vol, years)
	dTwo := dOne - vol*math.Sqrt(years)
	discount := math.Exp(-rate * years)

	var price float64
	if isCall {
		price = spot*normCDF(dOne) - strike*discount*normCDF(dTwo)
	} else {
		price = strike*discount*normCDF(-dTwo) - spot*normCDF(-dOne)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return intrinsic(isCall, spot, strike)
	}
	return price
}

// Gamma returns the Black-Scholes gamma, identical for calls and puts.
// Degenerate inputs or a NaN result yield 0.
func Gamma(spot, strike, rate, vol, years float64) float64 {
	if spot <= 0 || strike <= 0 || vol <= 0 || years <= 0 {
		return 0
	}

	dOne := d1(spot, strike, rate, vol, years)
	gamma := normPDF(dOne) / (spot * vol * math.Sqrt(years))

	if math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return 0
	}
	return gamma
}

func intrinsic(isCall bool, spot, strike float64) float64 {
	if isCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// ClampVol forces a volatility into [MinVol, MaxVol]. Non-finite values
// collapse to MinVol.
func ClampVol(vol float64) float64 {
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return MinVol
	}
	if vol < MinVol {
		return MinVol
	}
	if vol > MaxVol {
		return MaxVol
	}
	return vol
}
