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
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/events"
)

const SetDateOverridesCommandKey = "pricing.set_date_overrides"

// SetDateOverridesCommand upserts a batch of per-date price exceptions. The
// batch is all-or-nothing: one invalid entry rejects every entry.
type SetDateOverridesCommand struct {
	PropertyID string
	OwnerID    string
	Overrides  []dto.DateOverride
	RequestID  string
}

func (c SetDateOverridesCommand) Key() string { return SetDateOverridesCommandKey }

func (c SetDateOverridesCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return SetDateOverridesCommandKey + ":" + c.RequestID
}

func (c SetDateOverridesCommand) ResultPrototype() any { return []dto.DateOverride{} }

type SetDateOverridesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *SetDateOverridesHandler) Handle(ctx context.Context, cmd SetDateOverridesCommand) ([]dto.DateOverride, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	prop, err := support.OwnedProperty(ctx, unit.Unit, cmd.PropertyID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	today := calendar.Today(h.Clock)
	overrides := make([]domainpricing.DateOverride, 0, len(cmd.Overrides))
	dates := make([]string, 0, len(cmd.Overrides))
	for _, entry := range cmd.Overrides {
		date, err := calendar.ParseLocal(entry.Date)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, domainpricing.DateOverride{
			PropertyID:   prop.ID,
			Date:         date,
			FullDayPrice: entry.FullDayPrice,
			HalfDayPrice: entry.HalfDayPrice,
			Reason:       entry.Reason,
			UpdatedAt:    now,
		})
		dates = append(dates, entry.Date)
	}
	if err := domainpricing.ValidateOverrideBatch(overrides, today); err != nil {
		return nil, err
	}

	if err := unit.Unit.Overrides().ReplaceMany(ctx, overrides); err != nil {
		return nil, err
	}

	evs := []events.DomainEvent{domainpricing.OverridesAppliedEvent{
		PropertyID: prop.ID,
		Dates:      dates,
		At:         now,
	}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}

	if err := unit.Commit(); err != nil {
		return nil, err
	}

	result := make([]dto.DateOverride, 0, len(overrides))
	for _, override := range overrides {
		result = append(result, dto.MapDateOverride(override))
	}
	return result, nil
}

var _ commands.Handler[SetDateOverridesCommand, []dto.DateOverride] = (*SetDateOverridesHandler)(nil)
var _ middleware.IdempotentCommand = SetDateOverridesCommand{}
