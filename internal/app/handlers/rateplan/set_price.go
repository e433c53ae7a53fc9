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
)

const SetPriceCommandKey = "rateplan.set_price"

// SetPriceCommand upserts one ledger entry. Creating and updating are the
// same operation since entries are keyed (rate plan, date).
type SetPriceCommand struct {
	RatePlanID string
	OwnerID    string
	Date       string
	Amount     float64
	RequestID  string
}

func (c SetPriceCommand) Key() string { return SetPriceCommandKey }

func (c SetPriceCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return SetPriceCommandKey + ":" + c.RequestID
}

func (c SetPriceCommand) ResultPrototype() any { return dto.Price{} }

type SetPriceHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *SetPriceHandler) Handle(ctx context.Context, cmd SetPriceCommand) (dto.Price, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Price{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	plan, err := support.OwnedRatePlan(ctx, unit.Unit, cmd.RatePlanID, cmd.OwnerID)
	if err != nil {
		return dto.Price{}, err
	}

	date, err := calendar.ParseLocal(cmd.Date)
	if err != nil {
		return dto.Price{}, err
	}
	now := clock.OrSystem(h.Clock).Now().UTC()
	price := domainrateplan.Price{
		RatePlanID: plan.ID,
		Date:       date,
		Amount:     cmd.Amount,
		UpdatedAt:  now,
	}
	if err := price.Validate(calendar.Today(h.Clock)); err != nil {
		return dto.Price{}, err
	}

	if err := unit.Unit.Prices().Upsert(ctx, price); err != nil {
		return dto.Price{}, err
	}

	evs := []events.DomainEvent{domainrateplan.PricesChangedEvent{
		RatePlanID: plan.ID,
		Dates:      []string{cmd.Date},
		At:         now,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return dto.Price{}, err
	}

	if err := unit.Commit(); err != nil {
		return dto.Price{}, err
	}
	return dto.MapPrice(price), nil
}

var _ commands.Handler[SetPriceCommand, dto.Price] = (*SetPriceHandler)(nil)
var _ middleware.IdempotentCommand = SetPriceCommand{}
