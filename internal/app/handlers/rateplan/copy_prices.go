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

const CopyPricesCommandKey = "rateplan.copy_prices"

// CopyPricesCommand replays a source window of ledger entries at a later
// target window. Each entry lands at targetStart plus its day offset from
// sourceStart, so the target window always spans exactly as many days as the
// source. A targetStart before today rejects the whole call; entries that
// fail validation individually are skipped and reported.
type CopyPricesCommand struct {
	RatePlanID  string
	OwnerID     string
	SourceStart string
	SourceEnd   string
	TargetStart string
	RequestID   string
}

func (c CopyPricesCommand) Key() string { return CopyPricesCommandKey }

func (c CopyPricesCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return CopyPricesCommandKey + ":" + c.RequestID
}

func (c CopyPricesCommand) ResultPrototype() any { return dto.CopyPricesResult{} }

type CopyPricesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *CopyPricesHandler) Handle(ctx context.Context, cmd CopyPricesCommand) (dto.CopyPricesResult, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CopyPricesResult{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	plan, err := support.OwnedRatePlan(ctx, unit.Unit, cmd.RatePlanID, cmd.OwnerID)
	if err != nil {
		return dto.CopyPricesResult{}, err
	}
	sourceStart, sourceEnd, err := parseRequiredRange(cmd.SourceStart, cmd.SourceEnd)
	if err != nil {
		return dto.CopyPricesResult{}, err
	}
	if cmd.TargetStart == "" {
		return dto.CopyPricesResult{}, fault.InvalidInput("target start date is required")
	}
	targetStart, err := calendar.ParseLocal(cmd.TargetStart)
	if err != nil {
		return dto.CopyPricesResult{}, err
	}
	today := calendar.Today(h.Clock)
	if targetStart.Before(today) {
		return dto.CopyPricesResult{}, fault.PastDate("target start date %s is in the past", cmd.TargetStart)
	}
	spanDays := calendar.DaysBetween(sourceStart, sourceEnd)
	if spanDays+1 > domainrateplan.MaxPriceBatch {
		return dto.CopyPricesResult{}, fault.RangeTooLarge("copy range exceeds %d days", domainrateplan.MaxPriceBatch)
	}
	targetEnd := targetStart.AddDate(0, 0, spanDays)

	source, err := unit.Unit.Prices().Range(ctx, plan.ID, sourceStart, sourceEnd, 0, 0)
	if err != nil {
		return dto.CopyPricesResult{}, err
	}
	if len(source) == 0 {
		return dto.CopyPricesResult{}, fault.NotFound("no prices found between %s and %s", cmd.SourceStart, cmd.SourceEnd)
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	result := dto.CopyPricesResult{
		TargetStart: calendar.FormatLocal(targetStart),
		TargetEnd:   calendar.FormatLocal(targetEnd),
		Errors:      []dto.EntryError{},
	}
	copied := make([]string, 0, len(source))
	for _, entry := range source {
		offset := calendar.DaysBetween(sourceStart, entry.Date)
		target := targetStart.AddDate(0, 0, offset)
		price := domainrateplan.Price{RatePlanID: plan.ID, Date: target, Amount: entry.Amount, UpdatedAt: now}
		if err := price.Validate(today); err != nil {
			result.Errors = append(result.Errors, dto.EntryError{Date: calendar.FormatLocal(target), Error: err.Error()})
			continue
		}
		if err := unit.Unit.Prices().Upsert(ctx, price); err != nil {
			result.Errors = append(result.Errors, dto.EntryError{Date: calendar.FormatLocal(target), Error: err.Error()})
			continue
		}
		result.Copied++
		copied = append(copied, calendar.FormatLocal(target))
	}

	if len(copied) > 0 {
		evs := []events.DomainEvent{domainrateplan.PricesChangedEvent{
			RatePlanID: plan.ID,
			Dates:      copied,
			At:         now,
		}}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
			return dto.CopyPricesResult{}, err
		}
	}

	if err := unit.Commit(); err != nil {
		return dto.CopyPricesResult{}, err
	}
	return result, nil
}

var _ commands.Handler[CopyPricesCommand, dto.CopyPricesResult] = (*CopyPricesHandler)(nil)
var _ middleware.IdempotentCommand = CopyPricesCommand{}
