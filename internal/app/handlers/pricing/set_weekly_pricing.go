package pricing

import (
	"context"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/middleware"
	"stayflow/internal/app/outbox"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/events"
)

const SetWeeklyPricingCommandKey = "pricing.set_weekly_pricing"

// SetWeeklyPricingCommand replaces the full 7-day base pricing record of a
// property. Partial updates are not supported; all seven weekdays must be
// present.
type SetWeeklyPricingCommand struct {
	PropertyID string
	OwnerID    string
	Rates      map[string]dto.DayRate
	RequestID  string
}

func (c SetWeeklyPricingCommand) Key() string { return SetWeeklyPricingCommandKey }

func (c SetWeeklyPricingCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return SetWeeklyPricingCommandKey + ":" + c.RequestID
}

func (c SetWeeklyPricingCommand) ResultPrototype() any { return dto.WeeklyPricing{} }

type SetWeeklyPricingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *SetWeeklyPricingHandler) Handle(ctx context.Context, cmd SetWeeklyPricingCommand) (dto.WeeklyPricing, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.WeeklyPricing{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	prop, err := support.OwnedProperty(ctx, unit.Unit, cmd.PropertyID, cmd.OwnerID)
	if err != nil {
		return dto.WeeklyPricing{}, err
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	record := domainpricing.WeeklyBasePricing{
		PropertyID: prop.ID,
		Rates:      make(map[calendar.Weekday]domainpricing.DayRate, len(cmd.Rates)),
		UpdatedAt:  now,
	}
	for name, rate := range cmd.Rates {
		day, err := calendar.ParseWeekday(name)
		if err != nil {
			return dto.WeeklyPricing{}, err
		}
		record.Rates[day] = domainpricing.DayRate{FullDay: rate.FullDayPrice, HalfDay: rate.HalfDayPrice}
	}
	if err := record.Validate(); err != nil {
		return dto.WeeklyPricing{}, err
	}

	if err := unit.Unit.WeeklyPricing().Replace(ctx, record); err != nil {
		return dto.WeeklyPricing{}, err
	}

	evs := []events.DomainEvent{domainpricing.WeeklyPricingReplacedEvent{
		PropertyID: domainproperty.ID(cmd.PropertyID),
		At:         now,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return dto.WeeklyPricing{}, err
	}

	if err := unit.Commit(); err != nil {
		return dto.WeeklyPricing{}, err
	}
	return dto.MapWeeklyPricing(record), nil
}

var _ commands.Handler[SetWeeklyPricingCommand, dto.WeeklyPricing] = (*SetWeeklyPricingHandler)(nil)
var _ middleware.IdempotentCommand = SetWeeklyPricingCommand{}
