package rateplan

import (
	"context"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/fault"
)

const GetPriceGapsQueryKey = "rateplan.get_price_gaps"

// GetPriceGapsQuery lists every date of the range with no explicit ledger
// entry, so owners can see where the plan falls back to nothing.
type GetPriceGapsQuery struct {
	RatePlanID string
	OwnerID    string
	StartDate  string
	EndDate    string
}

func (q GetPriceGapsQuery) Key() string { return GetPriceGapsQueryKey }

type GetPriceGapsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPriceGapsHandler) Handle(ctx context.Context, query GetPriceGapsQuery) (dto.PriceGaps, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceGaps{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	plan, err := support.OwnedRatePlan(ctx, unit, query.RatePlanID, query.OwnerID)
	if err != nil {
		return dto.PriceGaps{}, err
	}
	start, end, err := parseRequiredRange(query.StartDate, query.EndDate)
	if err != nil {
		return dto.PriceGaps{}, err
	}

	dates, err := calendar.Enumerate(start, end)
	if err != nil {
		return dto.PriceGaps{}, err
	}
	if len(dates) > domainrateplan.MaxPriceBatch {
		return dto.PriceGaps{}, fault.RangeTooLarge("gap scan exceeds %d days", domainrateplan.MaxPriceBatch)
	}

	prices, err := unit.Prices().Range(ctx, plan.ID, start, end, 0, 0)
	if err != nil {
		return dto.PriceGaps{}, err
	}
	priced := make(map[string]struct{}, len(prices))
	for _, price := range prices {
		priced[calendar.FormatLocal(price.Date)] = struct{}{}
	}

	gaps := dto.PriceGaps{RatePlanID: query.RatePlanID, Dates: []string{}}
	for _, date := range dates {
		key := calendar.FormatLocal(date)
		if _, ok := priced[key]; !ok {
			gaps.Dates = append(gaps.Dates, key)
		}
	}
	return gaps, nil
}

var _ queries.Handler[GetPriceGapsQuery, dto.PriceGaps] = (*GetPriceGapsHandler)(nil)
