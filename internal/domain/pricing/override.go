package pricing

import (
	"context"
	"time"

	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/domain/shared/money"
)

// MaxOverrideBatch caps a single override batch, matching the 365-element
// ceiling on bulk payloads.
const MaxOverrideBatch = 365

// DateOverride punches a date-specific exception into the weekly base.
// At most one override exists per (property, date).
type DateOverride struct {
	PropertyID   property.ID
	Date         time.Time
	FullDayPrice float64
	// HalfDayPrice is optional; nil falls back to the weekly base half-day
	// price for the date's weekday.
	HalfDayPrice *float64
	Reason       string
	UpdatedAt    time.Time
}

// Validate checks the entry in isolation; today is the UTC-midnight floor
// for mutations.
func (o DateOverride) Validate(today time.Time) error {
	if o.Date.IsZero() {
		return fault.InvalidInput("override date is required")
	}
	if calendar.Normalize(o.Date).Before(today) {
		return fault.PastDate("cannot set an override for past date %s", calendar.FormatLocal(o.Date))
	}
	if err := money.ValidateNonNegative(o.FullDayPrice); err != nil {
		return fault.InvalidInput("override for %s: full-day price invalid: %v", calendar.FormatLocal(o.Date), err)
	}
	if o.HalfDayPrice != nil {
		if err := money.ValidateNonNegative(*o.HalfDayPrice); err != nil {
			return fault.InvalidInput("override for %s: half-day price invalid: %v", calendar.FormatLocal(o.Date), err)
		}
	}
	return nil
}

// ValidateOverrideBatch applies the fail-fast policy: any invalid entry
// rejects the whole batch before anything is written.
func ValidateOverrideBatch(overrides []DateOverride, today time.Time) error {
	if len(overrides) == 0 {
		return fault.InvalidInput("at least one override is required")
	}
	if len(overrides) > MaxOverrideBatch {
		return fault.RangeTooLarge("override batch exceeds %d entries", MaxOverrideBatch)
	}
	seen := make(map[string]struct{}, len(overrides))
	for _, override := range overrides {
		if err := override.Validate(today); err != nil {
			return err
		}
		key := calendar.FormatLocal(override.Date)
		if _, dup := seen[key]; dup {
			return fault.InvalidInput("duplicate override for %s in batch", key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// OverrideRepository stores per-date price overrides keyed (property, date).
type OverrideRepository interface {
	Range(ctx context.Context, id property.ID, start, end time.Time) ([]DateOverride, error)
	// ReplaceMany upserts every entry; callers validate the batch first.
	ReplaceMany(ctx context.Context, overrides []DateOverride) error
	// DeleteMany removes overrides for the given dates and reports how many
	// actually existed. Missing dates are not an error.
	DeleteMany(ctx context.Context, id property.ID, dates []time.Time) (int, error)
}
