package dto

import (
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/pricing"
)

// DayRate carries one weekday's price pair.
type DayRate struct {
	FullDayPrice float64 `json:"full_day_price"`
	HalfDayPrice float64 `json:"half_day_price"`
}

// WeeklyPricing is the full 7-day base pricing record.
type WeeklyPricing struct {
	PropertyID string             `json:"property_id"`
	Rates      map[string]DayRate `json:"rates"`
	UpdatedAt  string             `json:"updated_at,omitempty"`
}

func MapWeeklyPricing(w pricing.WeeklyBasePricing) WeeklyPricing {
	rates := make(map[string]DayRate, len(w.Rates))
	for day, rate := range w.Rates {
		rates[string(day)] = DayRate{FullDayPrice: rate.FullDay, HalfDayPrice: rate.HalfDay}
	}
	out := WeeklyPricing{PropertyID: string(w.PropertyID), Rates: rates}
	if !w.UpdatedAt.IsZero() {
		out.UpdatedAt = w.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

// DateOverride is one date-specific price exception.
type DateOverride struct {
	Date         string   `json:"date"`
	FullDayPrice float64  `json:"full_day_price"`
	HalfDayPrice *float64 `json:"half_day_price,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

func MapDateOverride(o pricing.DateOverride) DateOverride {
	return DateOverride{
		Date:         calendar.FormatLocal(o.Date),
		FullDayPrice: o.FullDayPrice,
		HalfDayPrice: o.HalfDayPrice,
		Reason:       o.Reason,
	}
}

// OverridesDeleted reports the idempotent delete outcome.
type OverridesDeleted struct {
	DeletedCount int `json:"deleted_count"`
}
