package pricing

import (
	"math"
	"testing"
)

func TestPrice_PutCallParity(t *testing.T) {
	spot, strike, rate, vol, years := 100.0, 105.0, 0.045, 0.25, 0.5

	call := Price(true, spot, strike, rate, vol, years)
	put := Price(false, spot, strike, rate, vol, years)

	// C - P = S - K·e^(-rT)
	lhs := call - put
	rhs := spot - strike*math.Exp(-rate*years)
	if math.Abs(lhs-rhs) > 1e-9 {
		t.Errorf("parity violated: C-P=%f, S-Ke^-rT=%f", lhs, rhs)
	}
}

func TestPrice_DegenerateInputsReturnIntrinsic(t *testing.T) {
	tests := []struct {
		name                           string
		isCall                         bool
		spot, strike, rate, vol, years float64
		want                           float64
	}{
		{"zero vol ITM call", true, 110, 100, 0.045, 0, 0.5, 10},
		{"zero time OTM call", true, 90, 100, 0.045, 0.2, 0, 0},
		{"zero vol ITM put", false, 90, 100, 0.045, 0, 0.5, 10},
		{"zero spot put", false, 0, 100, 0.045, 0.2, 0.5, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.isCall, tt.spot, tt.strike, tt.rate, tt.vol, tt.years)
			if got != tt.want {
				t.Errorf("Price = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestGamma_Properties(t *testing.T) {
	gamma := Gamma(100, 100, 0.045, 0.2, 0.25)
	if gamma <= 0 {
		t.Errorf("ATM gamma should be positive, got %f", gamma)
	}

	// Gamma decays away from the money.
	farOTM := Gamma(100, 200, 0.045, 0.2, 0.25)
	if farOTM >= gamma {
		t.Errorf("far OTM gamma %f should be below ATM gamma %f", farOTM, gamma)
	}

	if got := Gamma(100, 100, 0.045, 0, 0.25); got != 0 {
		t.Errorf("zero vol gamma should be 0, got %f", got)
	}
	if got := Gamma(0, 100, 0.045, 0.2, 0.25); got != 0 {
		t.Errorf("zero spot gamma should be 0, got %f", got)
	}
}

func TestImpliedVolatility_RoundTrip(t *testing.T) {
	tests := []struct {
		name                      string
		isCall                    bool
		spot, strike, rate, years float64
		trueVol                   float64
	}{
		{"ATM call", true, 100, 100, 0.045, 0.25, 0.20},
		{"slightly OTM call", true, 405, 410, 0.045, 0.08, 0.22},
		{"slightly ITM put", false, 405, 410, 0.045, 0.08, 0.25},
		{"longer dated call", true, 100, 105, 0.045, 1.0, 0.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := Price(tt.isCall, tt.spot, tt.strike, tt.rate, tt.trueVol, tt.years)
			iv := ImpliedVolatility(tt.isCall, price, tt.spot, tt.strike, tt.rate, tt.years)

			// The contract is on price error, not vol error: repricing at
			// the recovered vol must land within the convergence tolerance.
			reprice := Price(tt.isCall, tt.spot, tt.strike, tt.rate, iv, tt.years)
			if math.Abs(reprice-price) >= ivTolerance {
				t.Errorf("round-trip price error %g >= %g (iv=%f, true=%f)",
					math.Abs(reprice-price), ivTolerance, iv, tt.trueVol)
			}
		})
	}
}

func TestImpliedVolatility_NeverOutOfRange(t *testing.T) {
	tests := []struct {
		name                             string
		marketPrice, spot, strike, years float64
	}{
		{"zero price", 0, 100, 100, 0.25},
		{"negative price", -5, 100, 100, 0.25},
		{"absurd price", 1e9, 100, 100, 0.25},
		{"expired", 5, 100, 100, 0},
		{"deep OTM tiny price", 0.0001, 100, 300, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := ImpliedVolatility(true, tt.marketPrice, tt.spot, tt.strike, 0.045, tt.years)
			if iv < MinVol || iv > MaxVol {
				t.Errorf("iv %f outside [%f, %f]", iv, MinVol, MaxVol)
			}
			if math.IsNaN(iv) {
				t.Error("iv is NaN")
			}
		})
	}
}

func TestClampVol(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.2, 0.2},
		{-1, MinVol},
		{0, MinVol},
		{10, MaxVol},
		{math.NaN(), MinVol},
		{math.Inf(1), MinVol},
	}
	for _, tt := range tests {
		if got := ClampVol(tt.in); got != tt.want {
			t.Errorf("ClampVol(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
