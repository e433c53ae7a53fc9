package rateplan

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/infra/storage/s3"
)

const ExportPricesCommandKey = "rateplan.export_prices"

// ExportPricesCommand renders the ledger entries of a range as CSV and
// uploads the file, returning its public URL.
type ExportPricesCommand struct {
	RatePlanID string
	OwnerID    string
	StartDate  string
	EndDate    string
}

func (c ExportPricesCommand) Key() string { return ExportPricesCommandKey }

type ExportPricesHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   s3.Uploader
	Clock      clock.Clock
}

func (h *ExportPricesHandler) Handle(ctx context.Context, cmd ExportPricesCommand) (dto.PricesExport, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PricesExport{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	plan, err := support.OwnedRatePlan(ctx, unit, cmd.RatePlanID, cmd.OwnerID)
	if err != nil {
		return dto.PricesExport{}, err
	}
	start, end, err := parseRequiredRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return dto.PricesExport{}, err
	}

	prices, err := unit.Prices().Range(ctx, plan.ID, start, end, 0, 0)
	if err != nil {
		return dto.PricesExport{}, err
	}
	if len(prices) == 0 {
		return dto.PricesExport{}, fault.NotFound("no prices found between %s and %s", cmd.StartDate, cmd.EndDate)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"rate_plan_id", "date", "amount"}); err != nil {
		return dto.PricesExport{}, err
	}
	for _, price := range prices {
		row := []string{
			string(price.RatePlanID),
			calendar.FormatLocal(price.Date),
			strconv.FormatFloat(price.Amount, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return dto.PricesExport{}, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return dto.PricesExport{}, err
	}

	if h.Uploader == nil {
		return dto.PricesExport{}, fault.InvalidInput("exports are not configured")
	}
	stamp := clock.OrSystem(h.Clock).Now().UTC().Format("20060102T150405Z")
	key := fmt.Sprintf("exports/rate-plans/%s/%s_%s_%s.csv", plan.ID, cmd.StartDate, cmd.EndDate, stamp)
	url, err := h.Uploader.Upload(ctx, key, &buf, "text/csv")
	if err != nil {
		return dto.PricesExport{}, err
	}
	return dto.PricesExport{RatePlanID: cmd.RatePlanID, URL: url, Rows: len(prices)}, nil
}

var _ commands.Handler[ExportPricesCommand, dto.PricesExport] = (*ExportPricesHandler)(nil)
