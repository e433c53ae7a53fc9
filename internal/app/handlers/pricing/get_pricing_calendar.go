package pricing

import (
	"context"
	"time"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	"stayflow/internal/domain/shared/fault"
)

const GetPricingCalendarQueryKey = "pricing.get_pricing_calendar"

// GetPricingCalendarQuery returns the owner-facing merged calendar: weekly
// base with overrides applied, one entry per day of the inclusive range.
type GetPricingCalendarQuery struct {
	PropertyID string
	OwnerID    string
	StartDate  string
	EndDate    string
}

func (q GetPricingCalendarQuery) Key() string { return GetPricingCalendarQueryKey }

type GetPricingCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPricingCalendarHandler) Handle(ctx context.Context, query GetPricingCalendarQuery) (dto.PricingCalendar, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PricingCalendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := support.OwnedProperty(ctx, unit, query.PropertyID, query.OwnerID)
	if err != nil {
		return dto.PricingCalendar{}, err
	}
	start, end, err := parseRange(query.StartDate, query.EndDate)
	if err != nil {
		return dto.PricingCalendar{}, err
	}

	base, err := unit.WeeklyPricing().ByProperty(ctx, prop.ID)
	if err != nil {
		return dto.PricingCalendar{}, err
	}
	overrides, err := unit.Overrides().Range(ctx, prop.ID, start, end)
	if err != nil {
		return dto.PricingCalendar{}, err
	}

	days, err := domainpricing.BuildCalendar(base, overrides, start, end)
	if err != nil {
		return dto.PricingCalendar{}, err
	}
	return dto.MapPricingCalendar(query.PropertyID, days), nil
}

// parseRange reads the inclusive [start, end] query bounds. Both are
// required; range ordering is validated downstream by the enumerator.
func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" {
		return time.Time{}, time.Time{}, fault.InvalidInput("start date is required")
	}
	if endDate == "" {
		return time.Time{}, time.Time{}, fault.InvalidInput("end date is required")
	}
	start, err := calendar.ParseLocal(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := calendar.ParseLocal(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

var _ queries.Handler[GetPricingCalendarQuery, dto.PricingCalendar] = (*GetPricingCalendarHandler)(nil)
