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

const BulkDeletePricesCommandKey = "rateplan.bulk_delete_prices"

// BulkDeletePricesCommand removes every ledger entry in an inclusive date
// range. Dates without entries are silently skipped; the result carries the
// actual count removed.
type BulkDeletePricesCommand struct {
	RatePlanID string
	OwnerID    string
	StartDate  string
	EndDate    string
	RequestID  string
}

func (c BulkDeletePricesCommand) Key() string { return BulkDeletePricesCommandKey }

func (c BulkDeletePricesCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return BulkDeletePricesCommandKey + ":" + c.RequestID
}

func (c BulkDeletePricesCommand) ResultPrototype() any { return dto.BulkDeleteResult{} }

type BulkDeletePricesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *BulkDeletePricesHandler) Handle(ctx context.Context, cmd BulkDeletePricesCommand) (dto.BulkDeleteResult, error) {
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
	start, end, err := parseRequiredRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return dto.BulkDeleteResult{}, err
	}
	if start.Before(calendar.Today(h.Clock)) {
		return dto.BulkDeleteResult{}, fault.PastDate("cannot delete prices starting at past date %s", cmd.StartDate)
	}
	if calendar.DaysBetween(start, end)+1 > domainrateplan.MaxPriceBatch {
		return dto.BulkDeleteResult{}, fault.RangeTooLarge("delete range exceeds %d days", domainrateplan.MaxPriceBatch)
	}

	deleted, err := unit.Unit.Prices().DeleteRange(ctx, plan.ID, start, end)
	if err != nil {
		return dto.BulkDeleteResult{}, err
	}

	if deleted > 0 {
		now := clock.OrSystem(h.Clock).Now().UTC()
		evs := []events.DomainEvent{domainrateplan.PricesDeletedEvent{
			RatePlanID: plan.ID,
			Deleted:    deleted,
			At:         now,
		}}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
			return dto.BulkDeleteResult{}, err
		}
	}

	if err := unit.Commit(); err != nil {
		return dto.BulkDeleteResult{}, err
	}
	return dto.BulkDeleteResult{Deleted: deleted}, nil
}

var _ commands.Handler[BulkDeletePricesCommand, dto.BulkDeleteResult] = (*BulkDeletePricesHandler)(nil)
var _ middleware.IdempotentCommand = BulkDeletePricesCommand{}
