package beta

import (
	"math"
	"testing"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

func TestReturns(t *testing.T) {
	got := Returns([]float64{100, 110, 99})
	want := []float64{0.10, -0.10}
	if len(got) != len(want) {
		t.Fatalf("got %d returns, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("return[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	if Returns([]float64{100}) != nil {
		t.Error("single close should yield no returns")
	}
	if Returns(nil) != nil {
		t.Error("empty series should yield no returns")
	}

	// A zero close cannot divide; the step contributes a zero return.
	got = Returns([]float64{100, 0, 50})
	if got[1] != 0 {
		t.Errorf("zero-denominator return = %f, want 0", got[1])
	}
}

func TestEstimate_IdenticalSeriesIsExactlyOne(t *testing.T) {
	series := []float64{0.01, -0.02, 0.005, 0.03, -0.01, 0.002, -0.004, 0.015, -0.007, 0.02, 0.01, -0.03}
	est := Estimate(series, series)
	if est.Beta != 1.0 {
		t.Errorf("self-beta = %v, want exactly 1.0", est.Beta)
	}
	if est.SampleSize != len(series) {
		t.Errorf("sample size = %d, want %d", est.SampleSize, len(series))
	}
}

func TestEstimate_ScaledSeries(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.005, 0.03, -0.01, 0.002, -0.004, 0.015, -0.007, 0.02}
	ticker := make([]float64, len(bench))
	for i, r := range bench {
		ticker[i] = 2 * r
	}
	est := Estimate(ticker, bench)
	if math.Abs(est.Beta-2.0) > 1e-9 {
		t.Errorf("beta of doubled series = %f, want 2.0", est.Beta)
	}

	for i, r := range bench {
		ticker[i] = -1.5 * r
	}
	est = Estimate(ticker, bench)
	if math.Abs(est.Beta-(-1.5)) > 1e-9 {
		t.Errorf("beta of inverted series = %f, want -1.5", est.Beta)
	}
}

func TestEstimate_ShortSampleNeutral(t *testing.T) {
	short := []float64{0.01, -0.02, 0.005, 0.03, -0.01, 0.002, -0.004, 0.015, -0.007}
	est := Estimate(short, short)
	if est.Beta != 1.0 {
		t.Errorf("9-observation beta = %f, want neutral 1.0", est.Beta)
	}
	if est.SampleSize != 9 {
		t.Errorf("sample size = %d, want 9", est.SampleSize)
	}
}

func TestEstimate_MismatchedLengthsUseOverlap(t *testing.T) {
	long := make([]float64, 20)
	for i := range long {
		long[i] = float64(i%5-2) / 100
	}
	est := Estimate(long[:12], long)
	if est.SampleSize != 12 {
		t.Errorf("sample size = %d, want overlap 12", est.SampleSize)
	}
}

func TestEstimate_ZeroVarianceNeutral(t *testing.T) {
	flat := make([]float64, 15)
	ticker := []float64{0.01, -0.02, 0.005, 0.03, -0.01, 0.002, -0.004, 0.015, -0.007, 0.02, 0.01, -0.03, 0.004, -0.002, 0.01}
	est := Estimate(ticker, flat)
	if est.Beta != 1.0 {
		t.Errorf("zero-variance beta = %f, want neutral 1.0", est.Beta)
	}
}

func TestProject(t *testing.T) {
	est := chain.BetaEstimate{Beta: 2.0, SampleSize: 30}

	// Benchmark projected up 5%: a beta-2 instrument moves 10%.
	proj := Project(50, est, 400, 420)
	if math.Abs(proj.Target-55) > 1e-9 {
		t.Errorf("target = %f, want 55", proj.Target)
	}
	if proj.Direction != chain.DirectionUp {
		t.Errorf("direction = %s, want up", proj.Direction)
	}
	if proj.UpperRole != chain.RoleResistance || proj.LowerRole != chain.RoleSupport {
		t.Errorf("positive beta must keep roles: %+v", proj)
	}
}

func TestProject_NegativeBetaInvertsPolarity(t *testing.T) {
	est := chain.BetaEstimate{Beta: -1.0, SampleSize: 30}

	// Benchmark up 5%: an inverse instrument projects below its current.
	proj := Project(50, est, 400, 420)
	if proj.Target >= 50 {
		t.Errorf("negative-beta target %f should sit below current 50", proj.Target)
	}
	if proj.Direction != chain.DirectionDown {
		t.Errorf("direction = %s, want down", proj.Direction)
	}
	if proj.UpperRole != chain.RoleSupport || proj.LowerRole != chain.RoleResistance {
		t.Errorf("negative beta must invert roles: %+v", proj)
	}
}

func TestProject_DegenerateBenchmark(t *testing.T) {
	est := chain.BetaEstimate{Beta: 1.5, SampleSize: 30}
	proj := Project(50, est, 0, 420)
	if proj.Target != 50 {
		t.Errorf("zero benchmark current: target = %f, want unchanged 50", proj.Target)
	}
	if proj.Direction != chain.DirectionFlat {
		t.Errorf("direction = %s, want flat", proj.Direction)
	}
}

func TestSwapProbability(t *testing.T) {
	got := SwapProbability(chain.PriceProbability{Up: 60, Down: 25, Neutral: 15})
	want := chain.PriceProbability{Up: 25, Down: 60, Neutral: 15}
	if got != want {
		t.Errorf("swapped = %+v, want %+v", got, want)
	}
}
