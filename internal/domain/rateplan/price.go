package rateplan

import (
	"context"
	"time"

	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/domain/shared/money"
)

// MaxPriceBatch caps bulk ledger operations and range queries.
const MaxPriceBatch = 365

// Price is one explicit per-date entry in a rate plan's ledger, independent
// of the property's base pricing. Unique per (ratePlanID, date).
type Price struct {
	RatePlanID ID
	Date       time.Time
	Amount     float64
	UpdatedAt  time.Time
}

// Validate checks amount bounds and the past-date floor (UTC midnight).
func (p Price) Validate(today time.Time) error {
	if p.Date.IsZero() {
		return fault.InvalidInput("price date is required")
	}
	if calendar.Normalize(p.Date).Before(today) {
		return fault.PastDate("cannot modify price for past date %s", calendar.FormatLocal(p.Date))
	}
	return money.ValidateAmount(p.Amount)
}

// PriceRepository stores ledger entries. Every mutation is an atomic upsert
// per (ratePlanID, date); bulk operations iterate entry by entry.
type PriceRepository interface {
	// Range lists entries ordered by date; zero bounds mean unbounded.
	Range(ctx context.Context, id ID, start, end time.Time, limit, offset int) ([]Price, error)
	ByDate(ctx context.Context, id ID, date time.Time) (*Price, error)
	Upsert(ctx context.Context, price Price) error
	// Delete reports whether an entry existed for the date.
	Delete(ctx context.Context, id ID, date time.Time) (bool, error)
	// DeleteRange removes all entries in [start, end] and returns the count.
	DeleteRange(ctx context.Context, id ID, start, end time.Time) (int, error)
}
