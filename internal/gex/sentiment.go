package gex

import (
	"math"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

// Probability model constants. Calibrated values; part of the observable
// contract, do not tune.
const (
	energyFloor       = 1e-4
	neutralFloor      = 15.0
	neutralSpreadMult = 1.2
	neutralBase       = 10.0
	directionCap      = 80.0
)

// Sentiment is the normalized net exposure bias in [-100, 100]. Zero when
// both sides carry no exposure.
func Sentiment(callExposure, putExposure float64) float64 {
	denom := math.Abs(callExposure) + math.Abs(putExposure)
	if denom == 0 {
		return 0
	}
	s := 100 * (callExposure + putExposure) / denom
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// Probabilities converts exposure energy into a directional split that
// always sums to exactly 100. When total energy is negligible the model
// falls back to open-interest ratios.
func Probabilities(contracts []chain.ProcessedContract) chain.PriceProbability {
	var callEnergy, putEnergy float64
	for _, c := range contracts {
		if c.Exposure > 0 {
			callEnergy += c.Exposure
		} else {
			putEnergy += -c.Exposure
		}
	}

	if callEnergy+putEnergy < energyFloor {
		var callOI, putOI float64
		for _, c := range contracts {
			if c.Side == chain.Call {
				callOI += float64(c.EffectiveOpenInterest)
			} else {
				putOI += float64(c.EffectiveOpenInterest)
			}
		}
		callEnergy, putEnergy = callOI, putOI
	}

	rawUp := 50.0
	if callEnergy+putEnergy > 0 {
		rawUp = callEnergy / (callEnergy + putEnergy) * 100
	}
	rawDown := 100 - rawUp

	neutral := 100 - math.Abs(rawUp-rawDown)*neutralSpreadMult - neutralBase
	if neutral < neutralFloor {
		neutral = neutralFloor
	}

	rest := 100 - neutral
	upF := math.Min(directionCap, rest*rawUp/100)
	downF := math.Min(directionCap, rest*rawDown/100)

	// Mass freed by the cap flows back to neutral so the three legs keep
	// summing to 100.
	up := int(math.Round(upF))
	down := int(math.Round(downF))
	return chain.PriceProbability{
		Up:      up,
		Down:    down,
		Neutral: 100 - up - down,
	}
}
