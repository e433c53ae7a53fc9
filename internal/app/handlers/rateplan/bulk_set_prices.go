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

const BulkSetPricesCommandKey = "rateplan.bulk_set_prices"

// PriceEntry is one date-amount pair of a bulk ledger write.
type PriceEntry struct {
	Date   string
	Amount float64
}

// BulkSetPricesCommand upserts many ledger entries with partial-success
// semantics: valid entries land, invalid ones are skipped and reported.
type BulkSetPricesCommand struct {
	RatePlanID string
	OwnerID    string
	Entries    []PriceEntry
	RequestID  string
}

func (c BulkSetPricesCommand) Key() string { return BulkSetPricesCommandKey }

func (c BulkSetPricesCommand) IdempotencyKey() string {
	if c.RequestID == "" {
		return ""
	}
	return BulkSetPricesCommandKey + ":" + c.RequestID
}

func (c BulkSetPricesCommand) ResultPrototype() any { return dto.BulkPricesResult{} }

type BulkSetPricesHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
}

func (h *BulkSetPricesHandler) Handle(ctx context.Context, cmd BulkSetPricesCommand) (dto.BulkPricesResult, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BulkPricesResult{}, err
	}
	defer unit.Close()
	ctx = unit.Ctx

	plan, err := support.OwnedRatePlan(ctx, unit.Unit, cmd.RatePlanID, cmd.OwnerID)
	if err != nil {
		return dto.BulkPricesResult{}, err
	}
	if len(cmd.Entries) == 0 {
		return dto.BulkPricesResult{}, fault.InvalidInput("at least one price entry is required")
	}
	if len(cmd.Entries) > domainrateplan.MaxPriceBatch {
		return dto.BulkPricesResult{}, fault.RangeTooLarge("price batch exceeds %d entries", domainrateplan.MaxPriceBatch)
	}

	now := clock.OrSystem(h.Clock).Now().UTC()
	today := calendar.Today(h.Clock)
	result := dto.BulkPricesResult{Errors: []dto.EntryError{}, Prices: []dto.Price{}}
	changed := make([]string, 0, len(cmd.Entries))
	for _, entry := range cmd.Entries {
		date, err := calendar.ParseLocal(entry.Date)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.EntryError{Date: entry.Date, Error: err.Error()})
			continue
		}
		price := domainrateplan.Price{RatePlanID: plan.ID, Date: date, Amount: entry.Amount, UpdatedAt: now}
		if err := price.Validate(today); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.EntryError{Date: entry.Date, Error: err.Error()})
			continue
		}
		if err := unit.Unit.Prices().Upsert(ctx, price); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.EntryError{Date: entry.Date, Error: err.Error()})
			continue
		}
		result.Success++
		result.Prices = append(result.Prices, dto.MapPrice(price))
		changed = append(changed, entry.Date)
	}

	if len(changed) > 0 {
		evs := []events.DomainEvent{domainrateplan.PricesChangedEvent{
			RatePlanID: plan.ID,
			Dates:      changed,
			At:         now,
		}}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
			return dto.BulkPricesResult{}, err
		}
	}

	if err := unit.Commit(); err != nil {
		return dto.BulkPricesResult{}, err
	}
	return result, nil
}

var _ commands.Handler[BulkSetPricesCommand, dto.BulkPricesResult] = (*BulkSetPricesHandler)(nil)
var _ middleware.IdempotentCommand = BulkSetPricesCommand{}
