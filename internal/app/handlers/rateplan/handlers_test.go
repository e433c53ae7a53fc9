package rateplan

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"stayflow/internal/app/outbox"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/infra/storage/memory"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() clock.Clock {
	return clock.Fixed{Instant: testNow}
}

func newFactory(t *testing.T) memory.Factory {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewFactory()

	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:    "prop-1",
		Owner: "owner-1",
		Title: "Test Villa",
		Now:   testNow,
	})
	if err != nil {
		t.Fatalf("property: %v", err)
	}
	if err := factory.PropertiesRepo.Save(ctx, prop); err != nil {
		t.Fatalf("save property: %v", err)
	}

	plans := []*domainrateplan.RatePlan{
		{
			ID:             "rp-flex",
			PropertyID:     "prop-1",
			Name:           "Fully Flexible",
			Type:           domainrateplan.TypeFullyFlexible,
			AdjustmentType: domainrateplan.AdjustPercentage,
			Priority:       2,
			IsActive:       true,
		},
		{
			ID:              "rp-nonref",
			PropertyID:      "prop-1",
			Name:            "Non Refundable",
			Type:            domainrateplan.TypeNonRefundable,
			AdjustmentType:  domainrateplan.AdjustPercentage,
			AdjustmentValue: -10,
			Priority:        1,
			IsActive:        true,
		},
	}
	for _, plan := range plans {
		if err := factory.RatePlansRepo.Save(ctx, plan); err != nil {
			t.Fatalf("save plan: %v", err)
		}
	}

	rates := make(map[calendar.Weekday]domainpricing.DayRate, len(calendar.Weekdays))
	for _, day := range calendar.Weekdays {
		rates[day] = domainpricing.DayRate{FullDay: 100, HalfDay: 60}
	}
	weekly := domainpricing.WeeklyBasePricing{PropertyID: "prop-1", Rates: rates, UpdatedAt: testNow}
	if err := factory.WeeklyRepo.Replace(ctx, weekly); err != nil {
		t.Fatalf("weekly: %v", err)
	}
	return factory
}

func setPriceHandler(factory memory.Factory) *SetPriceHandler {
	return &SetPriceHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
}

func mustSetPrice(t *testing.T, factory memory.Factory, date string, amount float64) {
	t.Helper()
	_, err := setPriceHandler(factory).Handle(context.Background(), SetPriceCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		Date:       date,
		Amount:     amount,
	})
	if err != nil {
		t.Fatalf("set price %s: %v", date, err)
	}
}

func TestSetAndListPrices(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 120)
	mustSetPrice(t, factory, "2025-03-21", 140)

	list := &GetPricesHandler{UoWFactory: factory}
	prices, err := list.Handle(context.Background(), GetPricesQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
	})
	if err != nil {
		t.Fatalf("list prices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("got %d prices, want 2", len(prices))
	}
	if prices[0].Date != "2025-03-20" || prices[0].Amount != 120 {
		t.Errorf("first price %+v", prices[0])
	}
}

func TestSetPriceRejectsPastDate(t *testing.T) {
	factory := newFactory(t)
	_, err := setPriceHandler(factory).Handle(context.Background(), SetPriceCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		Date:       "2025-03-13",
		Amount:     120,
	})
	if !fault.IsKind(err, fault.KindPastDate) {
		t.Errorf("expected past date, got %v", err)
	}
}

func TestSetPriceMasksForeignPlan(t *testing.T) {
	factory := newFactory(t)
	_, err := setPriceHandler(factory).Handle(context.Background(), SetPriceCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-2",
		Date:       "2025-03-20",
		Amount:     120,
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("foreign owner must see not found, got %v", err)
	}
}

func TestDeletePrice(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 120)

	del := &DeletePriceHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	result, err := del.Handle(context.Background(), DeletePriceCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		Date:       "2025-03-20",
	})
	if err != nil {
		t.Fatalf("delete price: %v", err)
	}
	if result.Deleted != 1 {
		t.Errorf("deleted %d, want 1", result.Deleted)
	}

	_, err = del.Handle(context.Background(), DeletePriceCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		Date:       "2025-03-20",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("deleting a missing entry: got %v", err)
	}
}

func TestBulkSetPricesPartialSuccess(t *testing.T) {
	factory := newFactory(t)
	handler := &BulkSetPricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	result, err := handler.Handle(context.Background(), BulkSetPricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		Entries: []PriceEntry{
			{Date: "2025-03-20", Amount: 120},
			{Date: "2025-03-21", Amount: -5},
			{Date: "2025-03-13", Amount: 100},
			{Date: "2025-03-22", Amount: 140},
		},
	})
	if err != nil {
		t.Fatalf("bulk set: %v", err)
	}
	if result.Success != 2 || result.Skipped != 2 {
		t.Errorf("success %d skipped %d, want 2/2", result.Success, result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %+v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].Date != "2025-03-21" || result.Errors[1].Date != "2025-03-13" {
		t.Errorf("error entries %+v", result.Errors)
	}
	if len(result.Prices) != 2 {
		t.Errorf("applied prices %+v", result.Prices)
	}
}

func TestBulkSetPricesEmptyBatch(t *testing.T) {
	factory := newFactory(t)
	handler := &BulkSetPricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), BulkSetPricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
	})
	if !fault.IsKind(err, fault.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestBulkDeletePrices(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 120)
	mustSetPrice(t, factory, "2025-03-21", 130)
	mustSetPrice(t, factory, "2025-03-25", 140)

	handler := &BulkDeletePricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	result, err := handler.Handle(context.Background(), BulkDeletePricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-22",
	})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if result.Deleted != 2 {
		t.Errorf("deleted %d, want 2", result.Deleted)
	}
}

func TestBulkDeletePricesRejectsPastStart(t *testing.T) {
	factory := newFactory(t)
	handler := &BulkDeletePricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), BulkDeletePricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-10",
		EndDate:    "2025-03-22",
	})
	if !fault.IsKind(err, fault.KindPastDate) {
		t.Errorf("expected past date, got %v", err)
	}
}

func TestPriceStatistics(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 100)
	mustSetPrice(t, factory, "2025-03-21", 150)
	mustSetPrice(t, factory, "2025-03-22", 200)

	stats := &GetPriceStatisticsHandler{UoWFactory: factory}
	result, err := stats.Handle(context.Background(), GetPriceStatisticsQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-22",
	})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if result.Count != 3 || result.Average != 150 || result.Min != 100 || result.Max != 200 {
		t.Errorf("stats %+v", result)
	}
	if result.MinDate != "2025-03-20" || result.MaxDate != "2025-03-22" {
		t.Errorf("stat dates %+v", result)
	}
}

func TestPriceStatisticsEmptyRange(t *testing.T) {
	factory := newFactory(t)
	stats := &GetPriceStatisticsHandler{UoWFactory: factory}
	result, err := stats.Handle(context.Background(), GetPriceStatisticsQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-05-01",
		EndDate:    "2025-05-10",
	})
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if result.Count != 0 || result.Average != 0 {
		t.Errorf("empty ledger stats %+v", result)
	}
}

func TestPriceStatisticsUnboundedRange(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 100)
	mustSetPrice(t, factory, "2025-04-20", 200)

	stats := &GetPriceStatisticsHandler{UoWFactory: factory}
	result, err := stats.Handle(context.Background(), GetPriceStatisticsQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
	})
	if err != nil {
		t.Fatalf("statistics without bounds: %v", err)
	}
	if result.Count != 2 || result.Average != 150 {
		t.Errorf("stats %+v, want the whole ledger aggregated", result)
	}
	if result.MinDate != "2025-03-20" || result.MaxDate != "2025-04-20" {
		t.Errorf("stat dates %+v", result)
	}
}

func TestPriceGaps(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 100)
	mustSetPrice(t, factory, "2025-03-22", 120)

	gaps := &GetPriceGapsHandler{UoWFactory: factory}
	result, err := gaps.Handle(context.Background(), GetPriceGapsQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-24",
	})
	if err != nil {
		t.Fatalf("gaps: %v", err)
	}
	want := []string{"2025-03-21", "2025-03-23", "2025-03-24"}
	if len(result.Dates) != len(want) {
		t.Fatalf("got %v, want %v", result.Dates, want)
	}
	for i, date := range want {
		if result.Dates[i] != date {
			t.Errorf("gap[%d] = %s, want %s", i, result.Dates[i], date)
		}
	}
}

func TestCopyPricesKeepsOffsets(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 100)
	mustSetPrice(t, factory, "2025-03-22", 120)

	handler := &CopyPricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	result, err := handler.Handle(context.Background(), CopyPricesCommand{
		RatePlanID:  "rp-flex",
		OwnerID:     "owner-1",
		SourceStart: "2025-03-20",
		SourceEnd:   "2025-03-22",
		TargetStart: "2025-04-01",
	})
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if result.Copied != 2 {
		t.Errorf("copied %d, want 2", result.Copied)
	}
	if result.TargetStart != "2025-04-01" || result.TargetEnd != "2025-04-03" {
		t.Errorf("target window %s..%s", result.TargetStart, result.TargetEnd)
	}

	list := &GetPricesHandler{UoWFactory: factory}
	prices, err := list.Handle(context.Background(), GetPricesQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-04-01",
		EndDate:    "2025-04-03",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("got %d copied prices, want 2: %+v", len(prices), prices)
	}
	if prices[0].Date != "2025-04-01" || prices[0].Amount != 100 {
		t.Errorf("first copy %+v", prices[0])
	}
	if prices[1].Date != "2025-04-03" || prices[1].Amount != 120 {
		t.Errorf("offset must be preserved: %+v", prices[1])
	}
}

func TestCopyPricesRejectsPastTargetStart(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 100)
	mustSetPrice(t, factory, "2025-03-21", 120)

	handler := &CopyPricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), CopyPricesCommand{
		RatePlanID:  "rp-flex",
		OwnerID:     "owner-1",
		SourceStart: "2025-03-20",
		SourceEnd:   "2025-03-21",
		TargetStart: "2025-03-13",
	})
	if !fault.IsKind(err, fault.KindPastDate) {
		t.Fatalf("expected past date, got %v", err)
	}

	// The rejected call must not have written any destination entry.
	list := &GetPricesHandler{UoWFactory: factory}
	prices, err := list.Handle(context.Background(), GetPricesQuery{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-13",
		EndDate:    "2025-03-14",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(prices) != 0 {
		t.Errorf("rejected copy leaked entries: %+v", prices)
	}
}

func TestCopyPricesEmptySource(t *testing.T) {
	factory := newFactory(t)
	handler := &CopyPricesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), CopyPricesCommand{
		RatePlanID:  "rp-flex",
		OwnerID:     "owner-1",
		SourceStart: "2025-03-20",
		SourceEnd:   "2025-03-22",
		TargetStart: "2025-04-01",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBookingOptionsRanking(t *testing.T) {
	factory := newFactory(t)
	handler := &GetBookingOptionsHandler{UoWFactory: factory, Clock: fixedClock()}

	result, err := handler.Handle(context.Background(), GetBookingOptionsQuery{
		PropertyID: "prop-1",
		CheckIn:    "2025-03-20",
		CheckOut:   "2025-03-22",
		NumGuests:  2,
	})
	if err != nil {
		t.Fatalf("booking options: %v", err)
	}
	if result.Nights != 2 || result.BaseTotal != 200 {
		t.Errorf("nights %v base %v, want 2/200", result.Nights, result.BaseTotal)
	}
	if len(result.Options) != 2 {
		t.Fatalf("got %d options, want 2", len(result.Options))
	}
	if result.Options[0].RatePlanID != "rp-nonref" || result.Options[0].TotalPrice != 180 {
		t.Errorf("top option %+v, want rp-nonref at 180", result.Options[0])
	}
	if result.Selected != "rp-nonref" {
		t.Errorf("selected %q, want rp-nonref", result.Selected)
	}
}

func TestBookingOptionsKeepsPreviousSelection(t *testing.T) {
	factory := newFactory(t)
	handler := &GetBookingOptionsHandler{UoWFactory: factory, Clock: fixedClock()}

	result, err := handler.Handle(context.Background(), GetBookingOptionsQuery{
		PropertyID:         "prop-1",
		CheckIn:            "2025-03-20",
		CheckOut:           "2025-03-22",
		NumGuests:          2,
		PreviousRatePlanID: "rp-flex",
	})
	if err != nil {
		t.Fatalf("booking options: %v", err)
	}
	if result.Selected != "rp-flex" {
		t.Errorf("selected %q, want sticky rp-flex", result.Selected)
	}
}

func TestBookingOptionsHalfDay(t *testing.T) {
	factory := newFactory(t)
	handler := &GetBookingOptionsHandler{UoWFactory: factory, Clock: fixedClock()}

	result, err := handler.Handle(context.Background(), GetBookingOptionsQuery{
		PropertyID: "prop-1",
		CheckIn:    "2025-03-20",
		NumGuests:  2,
		IsHalfDay:  true,
	})
	if err != nil {
		t.Fatalf("half-day options: %v", err)
	}
	if result.Nights != 0.5 {
		t.Errorf("nights %v, want 0.5", result.Nights)
	}
	if result.BaseTotal != 60 {
		t.Errorf("base total %v, want the half-day rate 60", result.BaseTotal)
	}
}

func TestBookingOptionsRejectsInvertedStay(t *testing.T) {
	factory := newFactory(t)
	handler := &GetBookingOptionsHandler{UoWFactory: factory, Clock: fixedClock()}

	_, err := handler.Handle(context.Background(), GetBookingOptionsQuery{
		PropertyID: "prop-1",
		CheckIn:    "2025-03-22",
		CheckOut:   "2025-03-20",
		NumGuests:  2,
	})
	if !fault.IsKind(err, fault.KindInvalidRange) {
		t.Errorf("expected invalid range, got %v", err)
	}
}

type captureUploader struct {
	key         string
	contentType string
	body        []byte
}

func (u *captureUploader) Upload(_ context.Context, key string, reader io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	u.key = key
	u.contentType = contentType
	u.body = data
	return "https://cdn.example.com/" + key, nil
}

func TestExportPricesWritesCSV(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 120)
	mustSetPrice(t, factory, "2025-03-21", 135.5)

	uploader := &captureUploader{}
	handler := &ExportPricesHandler{UoWFactory: factory, Uploader: uploader, Clock: fixedClock()}
	result, err := handler.Handle(context.Background(), ExportPricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-21",
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Rows != 2 {
		t.Errorf("rows %d, want 2", result.Rows)
	}
	if result.URL != "https://cdn.example.com/"+uploader.key {
		t.Errorf("url %q does not match uploaded key %q", result.URL, uploader.key)
	}
	if uploader.contentType != "text/csv" {
		t.Errorf("content type %q, want text/csv", uploader.contentType)
	}

	lines := strings.Split(strings.TrimSpace(string(uploader.body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d csv lines, want header plus 2 rows:\n%s", len(lines), uploader.body)
	}
	if lines[0] != "rate_plan_id,date,amount" {
		t.Errorf("header %q", lines[0])
	}
	if lines[1] != "rp-flex,2025-03-20,120.00" {
		t.Errorf("row %q", lines[1])
	}
	if lines[2] != "rp-flex,2025-03-21,135.50" {
		t.Errorf("row %q", lines[2])
	}
}

func TestExportPricesWithoutUploader(t *testing.T) {
	factory := newFactory(t)
	mustSetPrice(t, factory, "2025-03-20", 120)

	handler := &ExportPricesHandler{UoWFactory: factory, Clock: fixedClock()}
	_, err := handler.Handle(context.Background(), ExportPricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-21",
	})
	if !fault.IsKind(err, fault.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestExportPricesEmptyRange(t *testing.T) {
	factory := newFactory(t)
	handler := &ExportPricesHandler{UoWFactory: factory, Uploader: &captureUploader{}, Clock: fixedClock()}
	_, err := handler.Handle(context.Background(), ExportPricesCommand{
		RatePlanID: "rp-flex",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-21",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBookingOptionsUnknownProperty(t *testing.T) {
	factory := newFactory(t)
	handler := &GetBookingOptionsHandler{UoWFactory: factory, Clock: fixedClock()}
	_, err := handler.Handle(context.Background(), GetBookingOptionsQuery{
		PropertyID: "ghost",
		CheckIn:    "2025-03-20",
		CheckOut:   "2025-03-22",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
