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

const SetAvailabilityCommandKey = "availability.set_one"

// SetAvailabilityCommand upserts the slot for a single property-date.
type SetAvailabilityCommand struct {
	PropertyID string
	OwnerID    string
	Date       string
	Status     string
	Reason     string
	RequestID  string
}

func (c SetAvailabilityCommand) Key() string { return SetAvailabilityCommandKey }

func (c SetAvailabilityCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return SetAvailabilityCommandKey + ":" + c.RequestID
}

func (c SetAvailabilityCommand) ResultPrototype() any { return dto.AvailabilitySlot{} }

type SetAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (dto.AvailabilitySlot, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilitySlot{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	prop, err := support.OwnedProperty(ctx, unit.Unit, cmd.PropertyID, cmd.OwnerID)
	if err != nil {
		return dto.AvailabilitySlot{}, err
	}

	slot, err := buildSlot(prop.ID, cmd.Date, cmd.Status, cmd.Reason, h.Clock)
	if err != nil {
		return dto.AvailabilitySlot{}, err
	}
	if err := unit.Unit.Availability().Upsert(ctx, slot); err != nil {
		return dto.AvailabilitySlot{}, err
	}

	evs := []events.DomainEvent{domainavailability.SlotsUpdatedEvent{
		PropertyID: prop.ID,
		Dates:      []string{cmd.Date},
		Status:     slot.Status,
		At:         slot.UpdatedAt,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return dto.AvailabilitySlot{}, err
	}

	if err := unit.Commit(); err != nil {
		return dto.AvailabilitySlot{}, err
	}
	return dto.MapSlot(slot), nil
}

// buildSlot validates one entry: a parseable non-past date and a known
// status value.
func buildSlot(propertyID domainproperty.ID, rawDate, rawStatus, reason string, c clock.Clock) (domainavailability.Slot, error) {
	date, err := calendar.ParseLocal(rawDate)
	if err != nil {
		return domainavailability.Slot{}, err
	}
	if date.Before(calendar.Today(c)) {
		return domainavailability.Slot{}, fault.PastDate("cannot set availability for past date %s", rawDate)
	}
	status, err := domainavailability.ParseStatus(rawStatus)
	if err != nil {
		return domainavailability.Slot{}, err
	}
	return domainavailability.Slot{
		PropertyID: propertyID,
		Date:       date,
		Status:     status,
		Reason:     reason,
		UpdatedAt:  clock.OrSystem(c).Now().UTC(),
	}, nil
}

var _ commands.Handler[SetAvailabilityCommand, dto.AvailabilitySlot] = (*SetAvailabilityHandler)(nil)
var _ middleware.IdempotentCommand = SetAvailabilityCommand{}
