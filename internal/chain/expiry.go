package chain

import (
	"sort"
	"time"

	"github.com/scmhub/calendar"
)

// EpsilonYears is the floor applied to time-to-expiration. Expired or
// same-day contracts are priced at a tiny positive horizon instead of zero
// so the pricing model never divides by zero.
const EpsilonYears = 1e-6

const hoursPerYear = 365 * 24

// YearsUntil returns the year fraction between now and expiration, floored
// at EpsilonYears.
func YearsUntil(now, expiration time.Time) float64 {
	years := expiration.Sub(now).Hours() / hoursPerYear
	if years < EpsilonYears {
		return EpsilonYears
	}
	return years
}

// MarketCalendar answers trading-day questions against the NYSE calendar.
type MarketCalendar struct {
	nyse *calendar.Calendar
}

func NewMarketCalendar() *MarketCalendar {
	return &MarketCalendar{nyse: calendar.XNYS()}
}

// IsTradingDay reports whether the given date is an NYSE business day.
// The time is normalized to noon so date-only inputs match correctly
// across timezones.
func (c *MarketCalendar) IsTradingDay(t time.Time) bool {
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
	return c.nyse.IsBusinessDay(noon)
}

// TradingExpirations filters a provider's expiration list down to future
// trading days, sorted ascending. Expirations on the current date are kept;
// their horizon floors to EpsilonYears downstream.
func (c *MarketCalendar) TradingExpirations(now time.Time, dates []time.Time) []time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if d.Before(today) {
			continue
		}
		if !c.IsTradingDay(d) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
