package availability

import (
	"context"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/middleware"
	"stayflow/internal/app/outbox"
	"stayflow/internal/app/uow"
	domainavailability "stayflow/internal/domain/availability"
	"stayflow/internal/domain/calendar"
	domainproperty "stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/events"
	"stayflow/internal/domain/shared/fault"
)

const MarkDatesBookedCommandKey = "availability.mark_dates_booked"

// MarkDatesBookedCommand closes the nights of a confirmed reservation. It is
// dispatched by the reservation listener, not by an owner, so there is no
// ownership check. Nights span [check-in, check-out); a stay with equal
// bounds books the single check-in date.
type MarkDatesBookedCommand struct {
	PropertyID string
	BookingID  string
	CheckIn    string
	CheckOut   string
}

func (c MarkDatesBookedCommand) Key() string { return MarkDatesBookedCommandKey }

func (c MarkDatesBookedCommand) IdempotencyKey() string {
	if c.BookingID == "" {
		return ""
	}
	return MarkDatesBookedCommandKey + ":" + c.BookingID
}

func (c MarkDatesBookedCommand) ResultPrototype() any { return dto.BulkAvailabilityResult{} }

type MarkDatesBookedHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *MarkDatesBookedHandler) Handle(ctx context.Context, cmd MarkDatesBookedCommand) (dto.BulkAvailabilityResult, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BulkAvailabilityResult{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	propertyID := domainproperty.ID(cmd.PropertyID)
	if _, err := unit.Unit.Properties().ByID(ctx, propertyID); err != nil {
		return dto.BulkAvailabilityResult{}, fault.NotFound("property not found")
	}

	checkIn, err := calendar.ParseLocal(cmd.CheckIn)
	if err != nil {
		return dto.BulkAvailabilityResult{}, err
	}
	checkOut := checkIn
	if cmd.CheckOut != "" {
		if checkOut, err = calendar.ParseLocal(cmd.CheckOut); err != nil {
			return dto.BulkAvailabilityResult{}, err
		}
	}
	lastNight := checkOut
	if checkOut.After(checkIn) {
		lastNight = checkOut.AddDate(0, 0, -1)
	}
	nights, err := calendar.Enumerate(checkIn, lastNight)
	if err != nil {
		return dto.BulkAvailabilityResult{}, err
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	result := dto.BulkAvailabilityResult{Failed: []dto.FailedUpdate{}}
	booked := make([]string, 0, len(nights))
	for _, night := range nights {
		slot := domainavailability.Slot{
			PropertyID: propertyID,
			Date:       night,
			Status:     domainavailability.StatusBooked,
			Reason:     "booking " + cmd.BookingID,
			UpdatedAt:  now,
		}
		if err := unit.Unit.Availability().Upsert(ctx, slot); err != nil {
			result.Failed = append(result.Failed, dto.FailedUpdate{Date: calendar.FormatLocal(night), Error: err.Error()})
			continue
		}
		result.Updated++
		booked = append(booked, calendar.FormatLocal(night))
	}

	if len(booked) > 0 {
		evs := []events.DomainEvent{domainavailability.DatesBookedEvent{
			PropertyID: propertyID,
			BookingID:  cmd.BookingID,
			Dates:      booked,
			At:         now,
		}}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
			return dto.BulkAvailabilityResult{}, err
		}
	}

	if err := unit.Commit(); err != nil {
		return dto.BulkAvailabilityResult{}, err
	}
	return result, nil
}

var _ commands.Handler[MarkDatesBookedCommand, dto.BulkAvailabilityResult] = (*MarkDatesBookedHandler)(nil)
var _ middleware.IdempotentCommand = MarkDatesBookedCommand{}
