package dto

import (
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/rateplan"
)

// Price is one ledger entry.
type Price struct {
	RatePlanID string  `json:"rate_plan_id"`
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
}

func MapPrice(p rateplan.Price) Price {
	return Price{
		RatePlanID: string(p.RatePlanID),
		Date:       calendar.FormatLocal(p.Date),
		Amount:     p.Amount,
	}
}

func MapPrices(prices []rateplan.Price) []Price {
	out := make([]Price, 0, len(prices))
	for _, p := range prices {
		out = append(out, MapPrice(p))
	}
	return out
}

// EntryError records one rejected entry of a partial-success bulk operation.
type EntryError struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// BulkPricesResult reports the outcome of a bulk upsert: applied entries,
// skipped entries and why. The call itself never fails on one bad entry.
type BulkPricesResult struct {
	Success int          `json:"success"`
	Skipped int          `json:"skipped"`
	Errors  []EntryError `json:"errors"`
	Prices  []Price      `json:"prices"`
}

// BulkDeleteResult reports how many ledger rows a range delete removed.
type BulkDeleteResult struct {
	Deleted int `json:"deleted"`
}

// PriceStatistics aggregates a ledger range.
type PriceStatistics struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	MinDate string  `json:"min_date,omitempty"`
	MaxDate string  `json:"max_date,omitempty"`
}

// PriceGaps lists the dates in a range with no explicit ledger entry.
type PriceGaps struct {
	RatePlanID string   `json:"rate_plan_id"`
	Dates      []string `json:"dates"`
}

// CopyPricesResult reports a day-offset copy.
type CopyPricesResult struct {
	Copied      int          `json:"copied"`
	TargetStart string       `json:"target_start"`
	TargetEnd   string       `json:"target_end"`
	Errors      []EntryError `json:"errors"`
}

// PricesExport points at an uploaded ledger export.
type PricesExport struct {
	RatePlanID string `json:"rate_plan_id"`
	URL        string `json:"url"`
	Rows       int    `json:"rows"`
}
