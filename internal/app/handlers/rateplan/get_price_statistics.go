package rateplan

import (
	"context"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	"stayflow/internal/domain/shared/money"
)

const GetPriceStatisticsQueryKey = "rateplan.get_price_statistics"

// GetPriceStatisticsQuery aggregates the explicit ledger entries of a range.
// Either bound may be empty, leaving that side open. Gaps do not contribute;
// an empty result set yields zeroed statistics.
type GetPriceStatisticsQuery struct {
	RatePlanID string
	OwnerID    string
	StartDate  string
	EndDate    string
}

func (q GetPriceStatisticsQuery) Key() string { return GetPriceStatisticsQueryKey }

type GetPriceStatisticsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPriceStatisticsHandler) Handle(ctx context.Context, query GetPriceStatisticsQuery) (dto.PriceStatistics, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceStatistics{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	plan, err := support.OwnedRatePlan(ctx, unit, query.RatePlanID, query.OwnerID)
	if err != nil {
		return dto.PriceStatistics{}, err
	}
	start, end, err := parseOptionalRange(query.StartDate, query.EndDate)
	if err != nil {
		return dto.PriceStatistics{}, err
	}

	prices, err := unit.Prices().Range(ctx, plan.ID, start, end, 0, 0)
	if err != nil {
		return dto.PriceStatistics{}, err
	}
	if len(prices) == 0 {
		return dto.PriceStatistics{}, nil
	}

	stats := dto.PriceStatistics{
		Count: len(prices),
		Min:   prices[0].Amount,
		Max:   prices[0].Amount,
	}
	var sum float64
	var minDate, maxDate = prices[0].Date, prices[0].Date
	for _, price := range prices {
		sum += price.Amount
		if price.Amount < stats.Min {
			stats.Min = price.Amount
			minDate = price.Date
		}
		if price.Amount > stats.Max {
			stats.Max = price.Amount
			maxDate = price.Date
		}
	}
	stats.Average = money.Round2(sum / float64(len(prices)))
	stats.MinDate = calendar.FormatLocal(minDate)
	stats.MaxDate = calendar.FormatLocal(maxDate)
	return stats, nil
}

var _ queries.Handler[GetPriceStatisticsQuery, dto.PriceStatistics] = (*GetPriceStatisticsHandler)(nil)
