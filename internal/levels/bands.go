package levels

import "math"

// Classification labels one recommendation band.
type Classification string

const (
	ExtremeRisk Classification = "extreme_risk"
	StrongBuy   Classification = "strong_buy"
	Buy         Classification = "buy"
	Neutral     Classification = "neutral"
	Sell        Classification = "sell"
	StrongSell  Classification = "strong_sell"
)

// Band is one of six contiguous, ordered price intervals. Adjacent bands
// share exactly one boundary; intervals are half-open [Min, Max).
type Band struct {
	Min            float64        `json:"min"`
	Max            float64        `json:"max"`
	Classification Classification `json:"classification"`
	Guidance       string         `json:"guidance"`
}

// Band geometry constants.
const (
	// minWidthFraction floors the support/resistance spread at 2% of the
	// current price, absorbing degenerate (support ≈ resistance) inputs.
	minWidthFraction = 0.02
	// neutralZoneFraction sizes the neutral zone around the midpoint.
	neutralZoneFraction = 0.1
	// panicDiscount sets the panic level below support.
	panicDiscount = 0.97
	// strongSellSpan is the display width of the topmost band.
	strongSellSpan = 20.0
)

var guidance = map[Classification]string{
	ExtremeRisk: "Price below panic level. Dealer hedging is destabilizing; expect outsized moves.",
	StrongBuy:   "Price under support with stretched downside. High-conviction accumulation zone.",
	Buy:         "Price between support and the neutral zone. Favorable risk/reward for entries.",
	Neutral:     "Price pinned near the midpoint. Dealer flows balanced; wait for a break.",
	Sell:        "Price between the neutral zone and resistance. Trim into strength.",
	StrongSell:  "Price at or above resistance. Exhaustion zone; reduce exposure.",
}

// Bands partitions the price axis into six ordered recommendation bands
// from a support/resistance pair (order-independent) and the current
// price. A spread narrower than 2% of the current price is symmetrically
// expanded around its midpoint first.
func Bands(support, resistance, currentPrice float64) []Band {
	low := math.Min(support, resistance)
	high := math.Max(support, resistance)

	if minWidth := currentPrice * minWidthFraction; high-low < minWidth {
		center := (low + high) / 2
		low = center - minWidth/2
		high = center + minWidth/2
	}

	mid := (low + high) / 2
	span := high - low
	neutralStart := mid - span*neutralZoneFraction
	neutralEnd := mid + span*neutralZoneFraction
	panicLevel := low * panicDiscount

	return []Band{
		{Min: 0, Max: panicLevel, Classification: ExtremeRisk, Guidance: guidance[ExtremeRisk]},
		{Min: panicLevel, Max: low, Classification: StrongBuy, Guidance: guidance[StrongBuy]},
		{Min: low, Max: neutralStart, Classification: Buy, Guidance: guidance[Buy]},
		{Min: neutralStart, Max: neutralEnd, Classification: Neutral, Guidance: guidance[Neutral]},
		{Min: neutralEnd, Max: high, Classification: Sell, Guidance: guidance[Sell]},
		{Min: high, Max: high + strongSellSpan, Classification: StrongSell, Guidance: guidance[StrongSell]},
	}
}

// Classify maps a price onto its band. Prices at or beyond the top band's
// display edge still classify as StrongSell so the partition covers the
// whole positive axis.
func Classify(bands []Band, price float64) Classification {
	for _, b := range bands[:len(bands)-1] {
		if price >= b.Min && price < b.Max {
			return b.Classification
		}
	}
	return bands[len(bands)-1].Classification
}
