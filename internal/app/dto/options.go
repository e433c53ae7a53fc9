package dto

import (
	"stayflow/internal/domain/rateplan"
)

// RatePlanOption is one eligible plan priced for the requested stay.
type RatePlanOption struct {
	RatePlanID      string  `json:"rate_plan_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	AdjustmentType  string  `json:"adjustment_type"`
	AdjustmentValue float64 `json:"adjustment_value"`
	Priority        int     `json:"priority"`
	TotalPrice      float64 `json:"total_price"`
	PricePerNight   float64 `json:"price_per_night"`
	Savings         float64 `json:"savings"`
}

// BookingOptions is the ranked offer list for a candidate stay. The first
// option is the auto-selected default.
type BookingOptions struct {
	PropertyID string           `json:"property_id"`
	Nights     float64          `json:"nights"`
	BaseTotal  float64          `json:"base_total"`
	Options    []RatePlanOption `json:"options"`
	Selected   string           `json:"selected,omitempty"`
}

func MapOption(option rateplan.Option) RatePlanOption {
	return RatePlanOption{
		RatePlanID:      string(option.Plan.ID),
		Name:            option.Plan.Name,
		Type:            string(option.Plan.Type),
		AdjustmentType:  string(option.Plan.AdjustmentType),
		AdjustmentValue: option.Plan.AdjustmentValue,
		Priority:        option.Plan.Priority,
		TotalPrice:      option.TotalPrice,
		PricePerNight:   option.PricePerNight,
		Savings:         option.Savings,
	}
}

func MapBookingOptions(propertyID string, nights, baseTotal float64, options []rateplan.Option, selected rateplan.ID) BookingOptions {
	out := BookingOptions{
		PropertyID: propertyID,
		Nights:     nights,
		BaseTotal:  baseTotal,
		Options:    make([]RatePlanOption, 0, len(options)),
		Selected:   string(selected),
	}
	for _, option := range options {
		out.Options = append(out.Options, MapOption(option))
	}
	return out
}
