package chain

import "time"

// Side identifies which half of the chain a contract belongs to.
type Side string

const (
	Call Side = "call"
	Put  Side = "put"
)

// Sign returns the exposure sign convention for the side: calls contribute
// positive dealer gamma, puts negative.
func (s Side) Sign() float64 {
	if s == Put {
		return -1
	}
	return 1
}

// RawContract is one option contract as delivered by the market-data
// provider. Several fields are unreliable at the source: implied volatility
// is frequently zero and open interest may be missing entirely. The
// processor normalizes these at the boundary.
type RawContract struct {
	Strike            float64   `json:"strike"`
	ImpliedVolatility float64   `json:"implied_volatility"`
	OpenInterest      int64     `json:"open_interest"`
	Volume            int64     `json:"volume"`
	LastPrice         float64   `json:"last_price"`
	Expiration        time.Time `json:"expiration"`
}

// ProcessedContract is a RawContract after normalization and pricing.
// Created once by the processor and never mutated afterward.
type ProcessedContract struct {
	RawContract

	Side Side `json:"side"`
	// Gamma is the absolute pricing-model gamma at the evaluation spot.
	Gamma float64 `json:"gamma"`
	// Exposure is the signed dollar gamma exposure per 1% underlying move.
	Exposure float64 `json:"exposure"`
	// EffectiveOpenInterest is the open interest actually used for
	// weighting, after the volume-proxy fallback.
	EffectiveOpenInterest int64 `json:"effective_open_interest"`
	// IVRepaired marks contracts whose implied volatility was recovered
	// from the last traded price instead of taken from the feed.
	IVRepaired bool `json:"iv_repaired"`
	// OpenInterestProxied marks contracts priced on the volume proxy
	// because reported open interest was missing.
	OpenInterestProxied bool `json:"open_interest_proxied"`
}

// PriceProbability is a directional probability split. The three legs
// always sum to exactly 100.
type PriceProbability struct {
	Up      int `json:"up"`
	Down    int `json:"down"`
	Neutral int `json:"neutral"`
}

// ExpirationSnapshot is one expiration's aggregated market structure,
// derived deterministically from its processed contracts plus spot and
// time-to-expiration. Recomputed in full on every request.
type ExpirationSnapshot struct {
	Expiration   time.Time `json:"expiration"`
	Spot         float64   `json:"spot"`
	TimeToExpiry float64   `json:"time_to_expiry"`

	CallWall          float64 `json:"call_wall"`
	PutWall           float64 `json:"put_wall"`
	GammaFlip         float64 `json:"gamma_flip"`
	VolatilityTrigger float64 `json:"volatility_trigger"`

	CallExposure  float64 `json:"call_exposure"`
	PutExposure   float64 `json:"put_exposure"`
	TotalExposure float64 `json:"total_exposure"`

	SentimentScore   float64          `json:"sentiment_score"`
	PriceProbability PriceProbability `json:"price_probability"`

	ExpectedLower float64 `json:"expected_lower"`
	ExpectedUpper float64 `json:"expected_upper"`
	ExpectedPrice float64 `json:"expected_price"`
}

// AggregateLevels is the time-weighted combination of several expiration
// snapshots into a single support/resistance pair for the whole horizon.
type AggregateLevels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// BetaEstimate is a regression beta over two aligned daily return series.
type BetaEstimate struct {
	Beta       float64 `json:"beta"`
	SampleSize int     `json:"sample_size"`
}

// SwingScenario is one scored entry/exit candidate generated from a pair
// of expiration snapshots.
type SwingScenario struct {
	EntryExpiration time.Time `json:"entry_expiration"`
	ExitExpiration  time.Time `json:"exit_expiration"`

	EntryLevel     float64 `json:"entry_level"`
	ExitLevel      float64 `json:"exit_level"`
	ExtensionLevel float64 `json:"extension_level"`

	BaseReturn      float64 `json:"base_return"`
	ExtensionReturn float64 `json:"extension_return"`

	SuccessProbability int `json:"success_probability"`
}

// Direction is a structural polarity flag. Negative-beta projections swap
// directions on the data instead of rewriting description text.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Role classifies a price level's function for a given instrument.
type Role string

const (
	RoleSupport    Role = "support"
	RoleResistance Role = "resistance"
)

// Diagnostics counts normalization events observed while processing a
// request. Built functionally and returned alongside the result; never a
// shared mutable side channel.
type Diagnostics struct {
	ContractsProcessed  int `json:"contracts_processed"`
	IVRepaired          int `json:"iv_repaired"`
	OpenInterestProxied int `json:"open_interest_proxied"`
	ExpirationsUsed     int `json:"expirations_used"`
	ExpirationsSkipped  int `json:"expirations_skipped"`
}

// Merge combines two diagnostics records.
func (d Diagnostics) Merge(other Diagnostics) Diagnostics {
	return Diagnostics{
		ContractsProcessed:  d.ContractsProcessed + other.ContractsProcessed,
		IVRepaired:          d.IVRepaired + other.IVRepaired,
		OpenInterestProxied: d.OpenInterestProxied + other.OpenInterestProxied,
		ExpirationsUsed:     d.ExpirationsUsed + other.ExpirationsUsed,
		ExpirationsSkipped:  d.ExpirationsSkipped + other.ExpirationsSkipped,
	}
}
