package rateplan

import (
	"context"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/middleware"
	"stayflow/internal/app/outbox"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/events"
	"stayflow/internal/domain/shared/fault"
)

const DeletePriceCommandKey = "rateplan.delete_price"

// DeletePriceCommand removes one ledger entry. Past entries are immutable,
// deleting them fails the same way modifying them does.
type DeletePriceCommand struct {
	RatePlanID string
	OwnerID    string
	Date       string
	RequestID  string
}

func (c DeletePriceCommand) Key() string { return DeletePriceCommandKey }

func (c DeletePriceCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return DeletePriceCommandKey + ":" + c.RequestID
}

func (c DeletePriceCommand) ResultPrototype() any { return dto.BulkDeleteResult{} }

type DeletePriceHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *DeletePriceHandler) Handle(ctx context.Context, cmd DeletePriceCommand) (dto.BulkDeleteResult, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BulkDeleteResult{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	plan, err := support.OwnedRatePlan(ctx, unit.Unit, cmd.RatePlanID, cmd.OwnerID)
	if err != nil {
		return dto.BulkDeleteResult{}, err
	}

	date, err := calendar.ParseLocal(cmd.Date)
	if err != nil {
		return dto.BulkDeleteResult{}, err
	}
	if date.Before(calendar.Today(h.Clock)) {
		return dto.BulkDeleteResult{}, fault.PastDate("cannot delete price for past date %s", cmd.Date)
	}

	existed, err := unit.Unit.Prices().Delete(ctx, plan.ID, date)
	if err != nil {
		return dto.BulkDeleteResult{}, err
	}
	if !existed {
		return dto.BulkDeleteResult{}, fault.NotFound("no price for date %s", cmd.Date)
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	evs := []events.DomainEvent{domainrateplan.PricesDeletedEvent{
		RatePlanID: plan.ID,
		Deleted:    1,
		At:         now,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return dto.BulkDeleteResult{}, err
	}

	if err := unit.Commit(); err != nil {
		return dto.BulkDeleteResult{}, err
	}
	return dto.BulkDeleteResult{Deleted: 1}, nil
}

var _ commands.Handler[DeletePriceCommand, dto.BulkDeleteResult] = (*DeletePriceHandler)(nil)
var _ middleware.IdempotentCommand = DeletePriceCommand{}
