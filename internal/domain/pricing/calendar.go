package pricing

import (
	"time"

	"stayflow/internal/domain/availability"
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/shared/fault"
)

// MaxPublicRangeDays bounds the guest-facing calendar query.
const MaxPublicRangeDays = 90

// CalendarDay is the derived day-by-day merge of weekly base, overrides and
// (for public views) availability. Never persisted.
type CalendarDay struct {
	Date         time.Time
	FullDayPrice float64
	HalfDayPrice float64
	IsOverride   bool
	Reason       string
	IsAvailable  bool
}

// BuildCalendar merges the weekly base with date overrides over [start, end].
// An override wins for its date; its missing half-day price falls back to the
// weekly base half-day price of that weekday.
func BuildCalendar(base WeeklyBasePricing, overrides []DateOverride, start, end time.Time) ([]CalendarDay, error) {
	dates, err := calendar.Enumerate(start, end)
	if err != nil {
		return nil, err
	}
	index := indexOverrides(overrides)
	days := make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		days = append(days, composeDay(base, index, date, true))
	}
	return days, nil
}

// BuildPublicCalendar additionally merges availability and returns a mapping
// keyed by the locally formatted date string, since public consumers index by
// exact date. The span between start and end is capped at MaxPublicRangeDays,
// so the widest allowed window holds MaxPublicRangeDays+1 dates.
func BuildPublicCalendar(base WeeklyBasePricing, overrides []DateOverride, slots []availability.Slot, start, end time.Time) (map[string]CalendarDay, error) {
	dates, err := calendar.Enumerate(start, end)
	if err != nil {
		return nil, err
	}
	if calendar.DaysBetween(start, end) > MaxPublicRangeDays {
		return nil, fault.RangeTooLarge("calendar range exceeds %d days", MaxPublicRangeDays)
	}
	index := indexOverrides(overrides)

	// Keyed by FormatLocal, not by the stored date value, so UTC-stored slots
	// cannot drift a day against the override index.
	open := make(map[string]bool, len(slots))
	for _, slot := range slots {
		open[calendar.FormatLocal(slot.Date)] = slot.Status == availability.StatusAvailable
	}

	result := make(map[string]CalendarDay, len(dates))
	for _, date := range dates {
		key := calendar.FormatLocal(date)
		available := true // open by default when no record exists
		if flag, ok := open[key]; ok {
			available = flag
		}
		result[key] = composeDay(base, index, date, available)
	}
	return result, nil
}

func composeDay(base WeeklyBasePricing, index map[string]DateOverride, date time.Time, available bool) CalendarDay {
	rate := base.RateFor(date)
	day := CalendarDay{
		Date:         date,
		FullDayPrice: rate.FullDay,
		HalfDayPrice: rate.HalfDay,
		IsAvailable:  available,
	}
	if override, ok := index[calendar.FormatLocal(date)]; ok {
		day.FullDayPrice = override.FullDayPrice
		if override.HalfDayPrice != nil {
			day.HalfDayPrice = *override.HalfDayPrice
		}
		day.IsOverride = true
		day.Reason = override.Reason
	}
	return day
}

func indexOverrides(overrides []DateOverride) map[string]DateOverride {
	index := make(map[string]DateOverride, len(overrides))
	for _, override := range overrides {
		index[calendar.FormatLocal(override.Date)] = override
	}
	return index
}
