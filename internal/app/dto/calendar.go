package dto

import (
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/pricing"
)

// CalendarDay is one merged day of the pricing calendar.
type CalendarDay struct {
	Date         string  `json:"date"`
	FullDayPrice float64 `json:"full_day_price"`
	HalfDayPrice float64 `json:"half_day_price"`
	IsOverride   bool    `json:"is_override"`
	Reason       string  `json:"reason,omitempty"`
	IsAvailable  bool    `json:"is_available"`
}

// PricingCalendar is the owner-facing day list.
type PricingCalendar struct {
	PropertyID string        `json:"property_id"`
	Days       []CalendarDay `json:"days"`
}

// PublicPricingCalendar maps YYYY-MM-DD to the merged day so guest-facing
// consumers can index by exact date.
type PublicPricingCalendar struct {
	PropertyID string                 `json:"property_id"`
	Days       map[string]CalendarDay `json:"days"`
}

func MapCalendarDay(day pricing.CalendarDay) CalendarDay {
	return CalendarDay{
		Date:         calendar.FormatLocal(day.Date),
		FullDayPrice: day.FullDayPrice,
		HalfDayPrice: day.HalfDayPrice,
		IsOverride:   day.IsOverride,
		Reason:       day.Reason,
		IsAvailable:  day.IsAvailable,
	}
}

func MapPricingCalendar(propertyID string, days []pricing.CalendarDay) PricingCalendar {
	out := PricingCalendar{PropertyID: propertyID, Days: make([]CalendarDay, 0, len(days))}
	for _, day := range days {
		out.Days = append(out.Days, MapCalendarDay(day))
	}
	return out
}

func MapPublicPricingCalendar(propertyID string, days map[string]pricing.CalendarDay) PublicPricingCalendar {
	out := PublicPricingCalendar{PropertyID: propertyID, Days: make(map[string]CalendarDay, len(days))}
	for key, day := range days {
		out.Days[key] = MapCalendarDay(day)
	}
	return out
}
