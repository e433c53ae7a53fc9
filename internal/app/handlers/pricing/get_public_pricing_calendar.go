package pricing

import (
	"context"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
)

const GetPublicPricingCalendarQueryKey = "pricing.get_public_pricing_calendar"

// GetPublicPricingCalendarQuery is the guest-facing calendar: pricing merged
// with availability, keyed by date, capped at 90 days. No ownership check.
type GetPublicPricingCalendarQuery struct {
	PropertyID string
	StartDate  string
	EndDate    string
}

func (q GetPublicPricingCalendarQuery) Key() string { return GetPublicPricingCalendarQueryKey }

type GetPublicPricingCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPublicPricingCalendarHandler) Handle(ctx context.Context, query GetPublicPricingCalendarQuery) (dto.PublicPricingCalendar, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PublicPricingCalendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	propertyID := domainproperty.ID(query.PropertyID)
	if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
		return dto.PublicPricingCalendar{}, fault.NotFound("property not found")
	}
	start, end, err := parseRange(query.StartDate, query.EndDate)
	if err != nil {
		return dto.PublicPricingCalendar{}, err
	}

	base, err := unit.WeeklyPricing().ByProperty(ctx, propertyID)
	if err != nil {
		return dto.PublicPricingCalendar{}, err
	}
	overrides, err := unit.Overrides().Range(ctx, propertyID, start, end)
	if err != nil {
		return dto.PublicPricingCalendar{}, err
	}
	slots, err := unit.Availability().Range(ctx, propertyID, start, end)
	if err != nil {
		return dto.PublicPricingCalendar{}, err
	}

	days, err := domainpricing.BuildPublicCalendar(base, overrides, slots, start, end)
	if err != nil {
		return dto.PublicPricingCalendar{}, err
	}
	return dto.MapPublicPricingCalendar(query.PropertyID, days), nil
}

var _ queries.Handler[GetPublicPricingCalendarQuery, dto.PublicPricingCalendar] = (*GetPublicPricingCalendarHandler)(nil)
