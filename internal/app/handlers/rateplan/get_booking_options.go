package rateplan

import (
	"context"
	"time"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/domain/shared/money"
)

const GetBookingOptionsQueryKey = "rateplan.get_booking_options"

// GetBookingOptionsQuery quotes a candidate stay: it derives the base total
// from the pricing calendar, filters the property's active rate plans
// against the stay, and returns them ranked with the auto-selected default
// first. Guest-facing, no ownership check.
type GetBookingOptionsQuery struct {
	PropertyID string
	CheckIn    string
	CheckOut   string
	NumGuests  int
	IsHalfDay  bool
	// PreviousRatePlanID keeps a still-eligible prior selection sticky.
	PreviousRatePlanID string
}

func (q GetBookingOptionsQuery) Key() string { return GetBookingOptionsQueryKey }

type GetBookingOptionsHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
}

func (h *GetBookingOptionsHandler) Handle(ctx context.Context, query GetBookingOptionsQuery) (dto.BookingOptions, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingOptions{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	propertyID := domainproperty.ID(query.PropertyID)
	if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
		return dto.BookingOptions{}, fault.NotFound("property not found")
	}

	stay, err := buildStay(query)
	if err != nil {
		return dto.BookingOptions{}, err
	}
	nightDates, err := nightDates(stay)
	if err != nil {
		return dto.BookingOptions{}, err
	}

	base, err := unit.WeeklyPricing().ByProperty(ctx, propertyID)
	if err != nil {
		return dto.BookingOptions{}, err
	}
	overrides, err := unit.Overrides().Range(ctx, propertyID, nightDates[0], nightDates[len(nightDates)-1])
	if err != nil {
		return dto.BookingOptions{}, err
	}
	days, err := domainpricing.BuildCalendar(base, overrides, nightDates[0], nightDates[len(nightDates)-1])
	if err != nil {
		return dto.BookingOptions{}, err
	}

	baseTotal := 0.0
	if stay.IsHalfDay {
		baseTotal = days[0].HalfDayPrice
	} else {
		for _, day := range days {
			baseTotal += day.FullDayPrice
		}
	}
	baseTotal = money.Round2(baseTotal)

	plans, err := unit.RatePlans().ByProperty(ctx, propertyID)
	if err != nil {
		return dto.BookingOptions{}, err
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	options := domainrateplan.EligibleOptions(plans, stay, baseTotal, now)
	selected := domainrateplan.AutoSelect(domainrateplan.ID(query.PreviousRatePlanID), options)
	return dto.MapBookingOptions(query.PropertyID, stay.Nights(), baseTotal, options, selected), nil
}

func buildStay(query GetBookingOptionsQuery) (domainrateplan.Stay, error) {
	if query.CheckIn == "" {
		return domainrateplan.Stay{}, fault.InvalidInput("check-in date is required")
	}
	checkIn, err := calendar.ParseLocal(query.CheckIn)
	if err != nil {
		return domainrateplan.Stay{}, err
	}
	stay := domainrateplan.Stay{
		CheckIn:   checkIn,
		NumGuests: query.NumGuests,
		IsHalfDay: query.IsHalfDay,
	}
	if !query.IsHalfDay {
		if query.CheckOut == "" {
			return domainrateplan.Stay{}, fault.InvalidInput("check-out date is required")
		}
		if stay.CheckOut, err = calendar.ParseLocal(query.CheckOut); err != nil {
			return domainrateplan.Stay{}, err
		}
	}
	if !stay.Complete() {
		return domainrateplan.Stay{}, fault.InvalidRange("check-out must be after check-in")
	}
	return stay, nil
}

// nightDates lists the dates actually charged: the half-day date alone, or
// every night of [check-in, check-out).
func nightDates(stay domainrateplan.Stay) ([]time.Time, error) {
	if stay.IsHalfDay {
		return []time.Time{calendar.Normalize(stay.CheckIn)}, nil
	}
	return calendar.Enumerate(stay.CheckIn, stay.CheckOut.AddDate(0, 0, -1))
}

var _ queries.Handler[GetBookingOptionsQuery, dto.BookingOptions] = (*GetBookingOptionsHandler)(nil)
