package gex

import "github.com/dgnsrekt/gexlens/internal/chain"

// Walls returns the call and put wall: the strike with maximal effective
// open interest on each side, a proxy resistance/support level. On an open
// interest tie the lower strike wins. A side with no contracts falls back
// to the fallback level (the current spot).
func Walls(contracts []chain.ProcessedContract, fallback float64) (callWall, putWall float64) {
	callWall, putWall = fallback, fallback

	var bestCallOI, bestPutOI int64 = -1, -1
	for _, c := range contracts {
		switch c.Side {
		case chain.Call:
			if c.EffectiveOpenInterest > bestCallOI ||
				(c.EffectiveOpenInterest == bestCallOI && c.Strike < callWall) {
				bestCallOI = c.EffectiveOpenInterest
				callWall = c.Strike
			}
		case chain.Put:
			if c.EffectiveOpenInterest > bestPutOI ||
				(c.EffectiveOpenInterest == bestPutOI && c.Strike < putWall) {
				bestPutOI = c.EffectiveOpenInterest
				putWall = c.Strike
			}
		}
	}
	return callWall, putWall
}
