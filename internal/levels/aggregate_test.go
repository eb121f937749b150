package levels

import (
	"math"
	"testing"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

func TestWeightedLevel(t *testing.T) {
	// Single input passes through.
	if got := WeightedLevel([]float64{390}, []float64{0.1}); got != 390 {
		t.Errorf("single level = %f, want 390", got)
	}

	// Equal times degenerate to a plain average.
	got := WeightedLevel([]float64{100, 200}, []float64{0.1, 0.1})
	if math.Abs(got-150) > 1e-9 {
		t.Errorf("equal-weight average = %f, want 150", got)
	}

	// The near expiration must pull the blend toward its level.
	near := WeightedLevel([]float64{100, 200}, []float64{0.01, 1.0})
	if near >= 150 {
		t.Errorf("near-dated level should dominate: got %f", near)
	}

	// Hand-computed fold: w = 1/sqrt(T).
	w1, w2 := 1/math.Sqrt(0.02), 1/math.Sqrt(0.25)
	want := (390*w1 + 380*w2) / (w1 + w2)
	got = WeightedLevel([]float64{390, 380}, []float64{0.02, 0.25})
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("fold = %f, want %f", got, want)
	}
}

func TestWeightedLevel_SameDayFloor(t *testing.T) {
	// Zero time-to-expiry uses the 1/365 floor instead of an infinite weight.
	got := WeightedLevel([]float64{100, 200}, []float64{0, 1.0/365.0})
	if math.Abs(got-150) > 1e-9 {
		t.Errorf("floored weights should equalize: got %f, want 150", got)
	}
}

func TestWeightedLevel_Empty(t *testing.T) {
	if got := WeightedLevel(nil, nil); got != 0 {
		t.Errorf("empty fold = %f, want 0", got)
	}
}

func TestAggregate(t *testing.T) {
	snaps := []chain.ExpirationSnapshot{
		{PutWall: 390, CallWall: 410, TimeToExpiry: 0.02},
		{PutWall: 380, CallWall: 420, TimeToExpiry: 0.10},
	}

	agg := Aggregate(snaps)
	if agg.Support <= 380 || agg.Support >= 390 {
		t.Errorf("support %f should sit between the put walls", agg.Support)
	}
	if agg.Resistance <= 410 || agg.Resistance >= 420 {
		t.Errorf("resistance %f should sit between the call walls", agg.Resistance)
	}

	// The near-dated walls carry more weight than the far-dated ones.
	if agg.Support-380 < 390-agg.Support {
		t.Errorf("support %f should lean toward the near wall 390", agg.Support)
	}
	if 420-agg.Resistance < agg.Resistance-410 {
		t.Errorf("resistance %f should lean toward the near wall 410", agg.Resistance)
	}
}
