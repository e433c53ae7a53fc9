package pricing

import (
	"context"
	"testing"
	"time"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/outbox"
	domainproperty "stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/clock"
	"stayflow/internal/domain/shared/fault"
	"stayflow/internal/infra/storage/memory"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newFactory(t *testing.T) memory.Factory {
	t.Helper()
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
	if err := factory.PropertiesRepo.Save(context.Background(), prop); err != nil {
		t.Fatalf("save property: %v", err)
	}
	return factory
}

func fixedClock() clock.Clock {
	return clock.Fixed{Instant: testNow}
}

func fullRates(full, half float64) map[string]dto.DayRate {
	rates := make(map[string]dto.DayRate, 7)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		rates[day] = dto.DayRate{FullDayPrice: full, HalfDayPrice: half}
	}
	return rates
}

func setWeekly(t *testing.T, factory memory.Factory, full, half float64) {
	t.Helper()
	handler := &SetWeeklyPricingHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), SetWeeklyPricingCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Rates:      fullRates(full, half),
	})
	if err != nil {
		t.Fatalf("set weekly: %v", err)
	}
}

func TestSetWeeklyPricingRoundTrip(t *testing.T) {
	factory := newFactory(t)
	setWeekly(t, factory, 100, 60)

	get := &GetWeeklyPricingHandler{UoWFactory: factory}
	result, err := get.Handle(context.Background(), GetWeeklyPricingQuery{PropertyID: "prop-1", OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("get weekly: %v", err)
	}
	if len(result.Rates) != 7 {
		t.Fatalf("got %d weekdays, want 7", len(result.Rates))
	}
	if result.Rates["friday"].FullDayPrice != 100 || result.Rates["friday"].HalfDayPrice != 60 {
		t.Errorf("friday rate %+v, want 100/60", result.Rates["friday"])
	}
}

func TestSetWeeklyPricingRejectsPartialWeek(t *testing.T) {
	factory := newFactory(t)
	handler := &SetWeeklyPricingHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	rates := fullRates(100, 60)
	delete(rates, "sunday")
	_, err := handler.Handle(context.Background(), SetWeeklyPricingCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Rates:      rates,
	})
	if !fault.IsKind(err, fault.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestSetWeeklyPricingMasksForeignProperty(t *testing.T) {
	factory := newFactory(t)
	handler := &SetWeeklyPricingHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), SetWeeklyPricingCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-2",
		Rates:      fullRates(100, 60),
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("foreign owner must see not found, got %v", err)
	}
}

func TestSetDateOverridesAtomicOnBadEntry(t *testing.T) {
	factory := newFactory(t)
	setWeekly(t, factory, 100, 60)

	handler := &SetDateOverridesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := handler.Handle(context.Background(), SetDateOverridesCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Overrides: []dto.DateOverride{
			{Date: "2025-03-15", FullDayPrice: 150},
			{Date: "2025-03-13", FullDayPrice: 150}, // before today
		},
	})
	if !fault.IsKind(err, fault.KindPastDate) {
		t.Fatalf("expected past date, got %v", err)
	}

	// Nothing may have been written, including the valid entry.
	calendar := &GetPricingCalendarHandler{UoWFactory: factory}
	result, err := calendar.Handle(context.Background(), GetPricingCalendarQuery{
		PropertyID: "prop-1", OwnerID: "owner-1",
		StartDate: "2025-03-15", EndDate: "2025-03-15",
	})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if result.Days[0].IsOverride {
		t.Errorf("failed batch leaked a partial write: %+v", result.Days[0])
	}
}

func TestOverrideLifecycle(t *testing.T) {
	factory := newFactory(t)
	setWeekly(t, factory, 100, 60)

	half := 90.0
	set := &SetDateOverridesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	applied, err := set.Handle(context.Background(), SetDateOverridesCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Overrides: []dto.DateOverride{
			{Date: "2025-03-15", FullDayPrice: 150, HalfDayPrice: &half, Reason: "Eid"},
			{Date: "2025-03-16", FullDayPrice: 150, Reason: "Eid"},
		},
	})
	if err != nil {
		t.Fatalf("set overrides: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("got %d applied overrides, want 2", len(applied))
	}

	cal := &GetPricingCalendarHandler{UoWFactory: factory}
	result, err := cal.Handle(context.Background(), GetPricingCalendarQuery{
		PropertyID: "prop-1", OwnerID: "owner-1",
		StartDate: "2025-03-15", EndDate: "2025-03-17",
	})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(result.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(result.Days))
	}
	if !result.Days[0].IsOverride || result.Days[0].FullDayPrice != 150 || result.Days[0].HalfDayPrice != 90 {
		t.Errorf("2025-03-15: %+v", result.Days[0])
	}
	if !result.Days[1].IsOverride || result.Days[1].HalfDayPrice != 60 {
		t.Errorf("2025-03-16 must keep the weekly half-day price: %+v", result.Days[1])
	}
	if result.Days[2].IsOverride {
		t.Errorf("2025-03-17 must be a plain weekly day: %+v", result.Days[2])
	}

	del := &DeleteDateOverridesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	deleted, err := del.Handle(context.Background(), DeleteDateOverridesCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Dates:      []string{"2025-03-15", "2025-03-20"},
	})
	if err != nil {
		t.Fatalf("delete overrides: %v", err)
	}
	if deleted.DeletedCount != 1 {
		t.Errorf("got %d deleted, want 1 (missing dates are not an error)", deleted.DeletedCount)
	}

	// Deleting again is idempotent.
	deleted, err = del.Handle(context.Background(), DeleteDateOverridesCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Dates:      []string{"2025-03-15"},
	})
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted.DeletedCount != 0 {
		t.Errorf("second delete count %d, want 0", deleted.DeletedCount)
	}
}

func TestDeleteOverridesRejectsPastDate(t *testing.T) {
	factory := newFactory(t)
	del := &DeleteDateOverridesHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      fixedClock(),
	}
	_, err := del.Handle(context.Background(), DeleteDateOverridesCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Dates:      []string{"2025-03-10"},
	})
	if !fault.IsKind(err, fault.KindPastDate) {
		t.Errorf("expected past date, got %v", err)
	}
}

func TestPricingCalendarRequiresRange(t *testing.T) {
	factory := newFactory(t)
	setWeekly(t, factory, 100, 60)

	cal := &GetPricingCalendarHandler{UoWFactory: factory}
	_, err := cal.Handle(context.Background(), GetPricingCalendarQuery{
		PropertyID: "prop-1", OwnerID: "owner-1", StartDate: "2025-03-15",
	})
	if !fault.IsKind(err, fault.KindInvalidInput) {
		t.Errorf("missing end date: got %v", err)
	}
}

func TestPublicCalendarUnknownProperty(t *testing.T) {
	factory := newFactory(t)
	public := &GetPublicPricingCalendarHandler{UoWFactory: factory}
	_, err := public.Handle(context.Background(), GetPublicPricingCalendarQuery{
		PropertyID: "ghost",
		StartDate:  "2025-03-15",
		EndDate:    "2025-03-16",
	})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPublicCalendarCapsRange(t *testing.T) {
	factory := newFactory(t)
	setWeekly(t, factory, 100, 60)

	public := &GetPublicPricingCalendarHandler{UoWFactory: factory}
	_, err := public.Handle(context.Background(), GetPublicPricingCalendarQuery{
		PropertyID: "prop-1",
		StartDate:  "2025-03-15",
		EndDate:    "2025-07-15",
	})
	if !fault.IsKind(err, fault.KindRangeTooLarge) {
		t.Errorf("expected range too large, got %v", err)
	}
}

func TestPublicCalendarDefaultsOpen(t *testing.T) {
	factory := newFactory(t)
	setWeekly(t, factory, 100, 60)

	public := &GetPublicPricingCalendarHandler{UoWFactory: factory}
	result, err := public.Handle(context.Background(), GetPublicPricingCalendarQuery{
		PropertyID: "prop-1",
		StartDate:  "2025-03-15",
		EndDate:    "2025-03-16",
	})
	if err != nil {
		t.Fatalf("public calendar: %v", err)
	}
	day, ok := result.Days["2025-03-15"]
	if !ok {
		t.Fatalf("missing day 2025-03-15: %+v", result.Days)
	}
	if !day.IsAvailable {
		t.Errorf("dates without slots must default to available")
	}
}
