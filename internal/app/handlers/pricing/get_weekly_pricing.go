package pricing

import (
	"context"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	domainproperty "stayflow/internal/domain/property"
)

const GetWeeklyPricingQueryKey = "pricing.get_weekly_pricing"

type GetWeeklyPricingQuery struct {
	PropertyID string
	OwnerID    string
}

func (q GetWeeklyPricingQuery) Key() string { return GetWeeklyPricingQueryKey }

type GetWeeklyPricingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetWeeklyPricingHandler) Handle(ctx context.Context, query GetWeeklyPricingQuery) (dto.WeeklyPricing, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.WeeklyPricing{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if _, err := support.OwnedProperty(ctx, unit, query.PropertyID, query.OwnerID); err != nil {
		return dto.WeeklyPricing{}, err
	}
	record, err := unit.WeeklyPricing().ByProperty(ctx, domainproperty.ID(query.PropertyID))
	if err != nil {
		return dto.WeeklyPricing{}, err
	}
	return dto.MapWeeklyPricing(record), nil
}

var _ queries.Handler[GetWeeklyPricingQuery, dto.WeeklyPricing] = (*GetWeeklyPricingHandler)(nil)
