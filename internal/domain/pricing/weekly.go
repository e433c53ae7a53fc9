package pricing

import (
	"context"
	"time"

	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/domain/shared/money"
)

// DayRate is the pair of prices a property charges for one weekday.
type DayRate struct {
	FullDay float64
	HalfDay float64
}

// WeeklyBasePricing holds the default price for every weekday. Exactly one
// record exists per property; setting it again replaces the whole record.
type WeeklyBasePricing struct {
	PropertyID property.ID
	Rates      map[calendar.Weekday]DayRate
	UpdatedAt  time.Time
}

// Validate checks that all seven weekdays are present with finite,
// non-negative full and half day prices.
func (w WeeklyBasePricing) Validate() error {
	if len(w.Rates) != len(calendar.Weekdays) {
		return fault.InvalidInput("weekly pricing must cover all 7 weekdays")
	}
	for _, day := range calendar.Weekdays {
		rate, ok := w.Rates[day]
		if !ok {
			return fault.InvalidInput("weekly pricing is missing %s", day)
		}
		if err := money.ValidateNonNegative(rate.FullDay); err != nil {
			return fault.InvalidInput("%s full-day price invalid: %v", day, err)
		}
		if err := money.ValidateNonNegative(rate.HalfDay); err != nil {
			return fault.InvalidInput("%s half-day price invalid: %v", day, err)
		}
	}
	return nil
}

// RateFor returns the weekday rate applying to the given date.
func (w WeeklyBasePricing) RateFor(date time.Time) DayRate {
	return w.Rates[calendar.WeekdayOf(date)]
}

// Copy returns a deep copy so callers cannot mutate a stored record.
func (w WeeklyBasePricing) Copy() WeeklyBasePricing {
	clone := w
	clone.Rates = make(map[calendar.Weekday]DayRate, len(w.Rates))
	for day, rate := range w.Rates {
		clone.Rates[day] = rate
	}
	return clone
}

// WeeklyRepository stores one weekly base pricing record per property.
type WeeklyRepository interface {
	// ByProperty fails with a not-found fault when pricing was never set up.
	ByProperty(ctx context.Context, id property.ID) (WeeklyBasePricing, error)
	// Replace upserts the single record for the property.
	Replace(ctx context.Context, pricing WeeklyBasePricing) error
}
