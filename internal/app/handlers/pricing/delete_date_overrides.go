package pricing

import (
	"context"
	"time"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/middleware"
	"stayflow/internal/app/outbox"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/events"
	"stayflow/internal/domain/shared/fault"
)

const DeleteDateOverridesCommandKey = "pricing.delete_date_overrides"

// DeleteDateOverridesCommand removes overrides for specific dates. Deleting a
// date with no override is not an error; the result reports how many existed.
type DeleteDateOverridesCommand struct {
	PropertyID string
	OwnerID    string
	Dates      []string
	RequestID  string
}

func (c DeleteDateOverridesCommand) Key() string { return DeleteDateOverridesCommandKey }

func (c DeleteDateOverridesCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return DeleteDateOverridesCommandKey + ":" + c.RequestID
}

func (c DeleteDateOverridesCommand) ResultPrototype() any { return dto.OverridesDeleted{} }

type DeleteDateOverridesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *DeleteDateOverridesHandler) Handle(ctx context.Context, cmd DeleteDateOverridesCommand) (dto.OverridesDeleted, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.OverridesDeleted{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	prop, err := support.OwnedProperty(ctx, unit.Unit, cmd.PropertyID, cmd.OwnerID)
	if err != nil {
		return dto.OverridesDeleted{}, err
	}
	if len(cmd.Dates) == 0 {
		return dto.OverridesDeleted{}, fault.InvalidInput("at least one date is required")
	}

	today := calendar.Today(h.Clock)
	dates := make([]time.Time, 0, len(cmd.Dates))
	for _, raw := range cmd.Dates {
		date, err := calendar.ParseLocal(raw)
		if err != nil {
			return dto.OverridesDeleted{}, err
		}
		if date.Before(today) {
			return dto.OverridesDeleted{}, fault.PastDate("cannot delete an override for past date %s", raw)
		}
		dates = append(dates, date)
	}

	deleted, err := unit.Unit.Overrides().DeleteMany(ctx, prop.ID, dates)
	if err != nil {
		return dto.OverridesDeleted{}, err
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	evs := []events.DomainEvent{domainpricing.OverridesDeletedEvent{
		PropertyID: prop.ID,
		Dates:      cmd.Dates,
		Deleted:    deleted,
		At:         now,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return dto.OverridesDeleted{}, err
	}

	if err := unit.Commit(); err != nil {
		return dto.OverridesDeleted{}, err
	}
	return dto.OverridesDeleted{DeletedCount: deleted}, nil
}

var _ commands.Handler[DeleteDateOverridesCommand, dto.OverridesDeleted] = (*DeleteDateOverridesHandler)(nil)
var _ middleware.IdempotentCommand = DeleteDateOverridesCommand{}
