package rateplan

import (
	"context"
	"time"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/fault"
)

const GetPricesQueryKey = "rateplan.get_prices"

// DefaultPageSize bounds an unpaginated price listing.
const DefaultPageSize = 100

// GetPricesQuery lists ledger entries of a rate plan ordered by date.
type GetPricesQuery struct {
	RatePlanID string
	OwnerID    string
	StartDate  string
	EndDate    string
	Limit      int
	Offset     int
}

func (q GetPricesQuery) Key() string { return GetPricesQueryKey }

type GetPricesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPricesHandler) Handle(ctx context.Context, query GetPricesQuery) ([]dto.Price, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	plan, err := support.OwnedRatePlan(ctx, unit, query.RatePlanID, query.OwnerID)
	if err != nil {
		return nil, err
	}
	start, end, err := parseOptionalRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > domainrateplan.MaxPriceBatch {
		limit = domainrateplan.MaxPriceBatch
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	prices, err := unit.Prices().Range(ctx, plan.ID, start, end, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.MapPrices(prices), nil
}

// parseOptionalRange allows either bound to be empty; an empty bound leaves
// that side of the repository range unbounded.
func parseOptionalRange(startDate, endDate string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if startDate != "" {
		if start, err = calendar.ParseLocal(startDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endDate != "" {
		if end, err = calendar.ParseLocal(endDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, fault.InvalidRange("start date %s is after end date %s", startDate, endDate)
	}
	return start, end, nil
}

// parseRequiredRange is the strict variant for operations that must bound
// their work, such as statistics, gap scans and range deletes.
func parseRequiredRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" {
		return time.Time{}, time.Time{}, fault.InvalidInput("start date is required")
	}
	if endDate == "" {
		return time.Time{}, time.Time{}, fault.InvalidInput("end date is required")
	}
	return parseOptionalRange(startDate, endDate)
}

var _ queries.Handler[GetPricesQuery, []dto.Price] = (*GetPricesHandler)(nil)
