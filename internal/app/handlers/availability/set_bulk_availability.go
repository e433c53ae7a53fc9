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
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/events"
	"stayflow/internal/domain/shared/fault"
)

const SetBulkAvailabilityCommandKey = "availability.set_many"

// MaxBulkSlots caps one bulk availability payload.
const MaxBulkSlots = 365

// BulkSlotUpdate is one entry of a bulk write. Status takes precedence;
// Available is the legacy boolean form accepted for older clients.
type BulkSlotUpdate struct {
	Date      string
	Status    string
	Available *bool
	Reason    string
}

// SetBulkAvailabilityCommand applies many slot updates with partial-success
// semantics: each entry succeeds or fails on its own and the result lists
// the failures.
type SetBulkAvailabilityCommand struct {
	PropertyID string
	OwnerID    string
	Updates    []BulkSlotUpdate
	RequestID  string
}

func (c SetBulkAvailabilityCommand) Key() string { return SetBulkAvailabilityCommandKey }

func (c SetBulkAvailabilityCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return SetBulkAvailabilityCommandKey + ":" + c.RequestID
}

func (c SetBulkAvailabilityCommand) ResultPrototype() any { return dto.BulkAvailabilityResult{} }

type SetBulkAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *SetBulkAvailabilityHandler) Handle(ctx context.Context, cmd SetBulkAvailabilityCommand) (dto.BulkAvailabilityResult, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BulkAvailabilityResult{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	prop, err := support.OwnedProperty(ctx, unit.Unit, cmd.PropertyID, cmd.OwnerID)
	if err != nil {
		return dto.BulkAvailabilityResult{}, err
	}
	if len(cmd.Updates) == 0 {
		return dto.BulkAvailabilityResult{}, fault.InvalidInput("at least one update is required")
	}
	if len(cmd.Updates) > MaxBulkSlots {
		return dto.BulkAvailabilityResult{}, fault.RangeTooLarge("bulk availability exceeds %d entries", MaxBulkSlots)
	}

	result := dto.BulkAvailabilityResult{Failed: []dto.FailedUpdate{}}
	updatedDates := make([]string, 0, len(cmd.Updates))
	for _, update := range cmd.Updates {
		status := update.Status
		if status == "" && update.Available != nil {
			status = string(domainavailability.StatusFromBool(*update.Available))
		}
		slot, err := buildSlot(prop.ID, update.Date, status, update.Reason, h.Clock)
		if err != nil {
			result.Failed = append(result.Failed, dto.FailedUpdate{Date: update.Date, Error: err.Error()})
			continue
		}
		if err := unit.Unit.Availability().Upsert(ctx, slot); err != nil {
			result.Failed = append(result.Failed, dto.FailedUpdate{Date: update.Date, Error: err.Error()})
			continue
		}
		result.Updated++
		updatedDates = append(updatedDates, update.Date)
	}

	if len(updatedDates) > 0 {
		evs := []events.DomainEvent{domainavailability.SlotsUpdatedEvent{
			PropertyID: prop.ID,
			Dates:      updatedDates,
			At:         clock.OrSystem(h.Clock).Now().UTC(),
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

var _ commands.Handler[SetBulkAvailabilityCommand, dto.BulkAvailabilityResult] = (*SetBulkAvailabilityHandler)(nil)
var _ middleware.IdempotentCommand = SetBulkAvailabilityCommand{}
