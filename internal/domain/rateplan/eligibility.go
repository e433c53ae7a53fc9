package rateplan

import (
	"math"
	"sort"
	"time"

	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/shared/money"
)

// Stay are the candidate booking parameters. Half-day stays use CheckIn as
// the single date and count as half a night.
type Stay struct {
	CheckIn   time.Time
	CheckOut  time.Time
	NumGuests int
	IsHalfDay bool
}

// Nights is 0.5 for half-day stays, otherwise the ceiling of the day span.
func (s Stay) Nights() float64 {
	if s.IsHalfDay {
		return 0.5
	}
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return 0
	}
	return math.Ceil(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// Complete reports whether the stay has enough date information to quote.
func (s Stay) Complete() bool {
	if s.IsHalfDay {
		return !s.CheckIn.IsZero()
	}
	return !s.CheckIn.IsZero() && !s.CheckOut.IsZero() && s.CheckOut.After(s.CheckIn)
}

// Option is one eligible rate plan priced for the stay.
type Option struct {
	Plan          RatePlan
	TotalPrice    float64
	PricePerNight float64
	Savings       float64
}

// EligibleOptions is the single canonical eligibility-and-ranking algorithm.
// It filters active plans against the stay constraints, prices each survivor
// from the calendar-derived base total, and orders them so the first element
// is the default offer. Server quoting and any client preview must both go
// through this function.
func EligibleOptions(plans []*RatePlan, stay Stay, baseTotal float64, now time.Time) []Option {
	nights := stay.Nights()
	eligible := make([]RatePlan, 0, len(plans))
	for _, plan := range plans {
		if plan == nil || !plan.IsActive {
			continue
		}
		if plan.MinStay > 0 && nights < plan.MinStay {
			continue
		}
		if plan.MaxStay > 0 && nights > plan.MaxStay {
			continue
		}
		if plan.MinGuests > 0 && stay.NumGuests < plan.MinGuests {
			continue
		}
		if plan.MaxGuests > 0 && stay.NumGuests > plan.MaxGuests {
			continue
		}
		if plan.MinAdvanceBookingDays > 0 {
			if daysAhead(stay.CheckIn, now) < plan.MinAdvanceBookingDays {
				continue
			}
		}
		eligible = append(eligible, *plan)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return rankBefore(eligible[i], eligible[j])
	})

	options := make([]Option, 0, len(eligible))
	for _, plan := range eligible {
		options = append(options, priceOption(plan, nights, baseTotal))
	}
	return options
}

// AutoSelect keeps the previous selection when it is still eligible and
// otherwise falls back to the top-ranked option, or clears the selection
// when nothing qualifies.
func AutoSelect(previous ID, options []Option) ID {
	for _, option := range options {
		if option.Plan.ID == previous {
			return previous
		}
	}
	if len(options) > 0 {
		return options[0].Plan.ID
	}
	return ""
}

// rankBefore is the three-tier comparator: a discounting plan beats a
// non-discounting one, a deeper discount beats a shallower one, then
// ascending priority decides.
func rankBefore(a, b RatePlan) bool {
	aNeg := a.AdjustmentValue < 0
	bNeg := b.AdjustmentValue < 0
	if aNeg != bNeg {
		return aNeg
	}
	if aNeg && bNeg && a.AdjustmentValue != b.AdjustmentValue {
		return a.AdjustmentValue < b.AdjustmentValue
	}
	return a.Priority < b.Priority
}

func priceOption(plan RatePlan, nights, baseTotal float64) Option {
	total := baseTotal
	switch plan.AdjustmentType {
	case AdjustPercentage:
		total = baseTotal * (1 + plan.AdjustmentValue/100)
	case AdjustFixed:
		// Fixed adjustments are per night; half-day stays carry half of it.
		total = baseTotal + plan.AdjustmentValue*nights
	}
	if total < 0 {
		total = 0
	}
	total = money.Round2(total)

	perNight := 0.0
	if nights > 0 {
		perNight = money.Round2(total / nights)
	}
	savings := money.Round2(baseTotal - total)
	if savings < 0 {
		savings = 0
	}
	return Option{Plan: plan, TotalPrice: total, PricePerNight: perNight, Savings: savings}
}

func daysAhead(checkIn time.Time, now time.Time) int {
	if checkIn.IsZero() {
		return 0
	}
	diff := calendar.Normalize(checkIn).Sub(now.UTC()).Hours() / 24
	return int(math.Ceil(diff))
}
