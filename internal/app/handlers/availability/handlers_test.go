package availability

import (
	"context"
	"testing"
	"time"

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

func setHandler(factory memory.Factory) *SetAvailabilityHandler {
	return &SetAvailabilityHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      clock.Fixed{Instant: testNow},
	}
}

func TestSetAvailabilityRoundTrip(t *testing.T) {
	factory := newFactory(t)
	slot, err := setHandler(factory).Handle(context.Background(), SetAvailabilityCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Date:       "2025-03-20",
		Status:     "blocked",
		Reason:     "maintenance crew",
	})
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if slot.Status != "blocked" || slot.Available {
		t.Errorf("slot %+v, want blocked", slot)
	}

	get := &GetAvailabilityHandler{UoWFactory: factory}
	result, err := get.Handle(context.Background(), GetAvailabilityQuery{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-19",
		EndDate:    "2025-03-21",
	})
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(result.Slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(result.Slots))
	}
	if result.Slots[0].Date != "2025-03-20" || result.Slots[0].Reason != "maintenance crew" {
		t.Errorf("slot %+v", result.Slots[0])
	}
}

func TestSetAvailabilityRejectsPastDate(t *testing.T) {
	factory := newFactory(t)
	_, err := setHandler(factory).Handle(context.Background(), SetAvailabilityCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Date:       "2025-03-13",
		Status:     "blocked",
	})
	if !fault.IsKind(err, fault.KindPastDate) {
		t.Errorf("expected past date, got %v", err)
	}
}

func TestSetAvailabilityRejectsUnknownStatus(t *testing.T) {
	factory := newFactory(t)
	_, err := setHandler(factory).Handle(context.Background(), SetAvailabilityCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Date:       "2025-03-20",
		Status:     "busy",
	})
	if !fault.IsKind(err, fault.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestSetBulkAvailabilityPartialSuccess(t *testing.T) {
	factory := newFactory(t)
	handler := &SetBulkAvailabilityHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      clock.Fixed{Instant: testNow},
	}
	legacy := false
	result, err := handler.Handle(context.Background(), SetBulkAvailabilityCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Updates: []BulkSlotUpdate{
			{Date: "2025-03-20", Status: "blocked"},
			{Date: "2025-03-13", Status: "blocked"}, // past
			{Date: "2025-03-21", Available: &legacy},
			{Date: "bogus", Status: "blocked"},
		},
	})
	if err != nil {
		t.Fatalf("bulk availability: %v", err)
	}
	if result.Updated != 2 {
		t.Errorf("updated %d, want 2", result.Updated)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("failed %d, want 2: %+v", len(result.Failed), result.Failed)
	}
	if result.Failed[0].Date != "2025-03-13" || result.Failed[1].Date != "bogus" {
		t.Errorf("failed entries %+v", result.Failed)
	}

	// The legacy boolean collapsed to blocked.
	get := &GetAvailabilityHandler{UoWFactory: factory}
	slots, err := get.Handle(context.Background(), GetAvailabilityQuery{
		PropertyID: "prop-1", OwnerID: "owner-1",
	})
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots.Slots))
	}
	for _, slot := range slots.Slots {
		if slot.Status != "blocked" {
			t.Errorf("slot %+v, want blocked", slot)
		}
	}
}

func TestSetBulkAvailabilityRejectsOversizedBatch(t *testing.T) {
	factory := newFactory(t)
	handler := &SetBulkAvailabilityHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      clock.Fixed{Instant: testNow},
	}
	updates := make([]BulkSlotUpdate, MaxBulkSlots+1)
	for i := range updates {
		updates[i] = BulkSlotUpdate{Date: "2025-03-20", Status: "blocked"}
	}
	_, err := handler.Handle(context.Background(), SetBulkAvailabilityCommand{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		Updates:    updates,
	})
	if !fault.IsKind(err, fault.KindRangeTooLarge) {
		t.Errorf("expected range too large, got %v", err)
	}
}

func TestMarkDatesBookedClosesNights(t *testing.T) {
	factory := newFactory(t)
	handler := &MarkDatesBookedHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      clock.Fixed{Instant: testNow},
	}
	result, err := handler.Handle(context.Background(), MarkDatesBookedCommand{
		PropertyID: "prop-1",
		BookingID:  "bk-42",
		CheckIn:    "2025-03-20",
		CheckOut:   "2025-03-23",
	})
	if err != nil {
		t.Fatalf("mark booked: %v", err)
	}
	if result.Updated != 3 {
		t.Errorf("updated %d nights, want 3 (check-out day stays open)", result.Updated)
	}

	public := &GetPublicAvailabilityHandler{UoWFactory: factory}
	slots, err := public.Handle(context.Background(), GetPublicAvailabilityQuery{
		PropertyID: "prop-1",
		StartDate:  "2025-03-20",
		EndDate:    "2025-03-23",
	})
	if err != nil {
		t.Fatalf("public range: %v", err)
	}
	if len(slots.Slots) != 3 {
		t.Fatalf("got %d slots, want 3: %+v", len(slots.Slots), slots.Slots)
	}
	for _, slot := range slots.Slots {
		if slot.Status != "booked" || slot.Available {
			t.Errorf("slot %+v, want booked", slot)
		}
	}
}

func TestMarkDatesBookedSingleDate(t *testing.T) {
	factory := newFactory(t)
	handler := &MarkDatesBookedHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    outbox.JSONEventEncoder{},
		Clock:      clock.Fixed{Instant: testNow},
	}
	result, err := handler.Handle(context.Background(), MarkDatesBookedCommand{
		PropertyID: "prop-1",
		BookingID:  "bk-43",
		CheckIn:    "2025-03-20",
		CheckOut:   "2025-03-20",
	})
	if err != nil {
		t.Fatalf("mark booked: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("updated %d, want 1 for an equal-bounds stay", result.Updated)
	}
}

func TestGetAvailabilityReversedRange(t *testing.T) {
	factory := newFactory(t)
	get := &GetAvailabilityHandler{UoWFactory: factory}
	_, err := get.Handle(context.Background(), GetAvailabilityQuery{
		PropertyID: "prop-1",
		OwnerID:    "owner-1",
		StartDate:  "2025-03-21",
		EndDate:    "2025-03-20",
	})
	if !fault.IsKind(err, fault.KindInvalidRange) {
		t.Errorf("expected invalid range, got %v", err)
	}
}

func TestPublicAvailabilityUnknownProperty(t *testing.T) {
	factory := newFactory(t)
	public := &GetPublicAvailabilityHandler{UoWFactory: factory}
	_, err := public.Handle(context.Background(), GetPublicAvailabilityQuery{PropertyID: "ghost"})
	if !fault.IsKind(err, fault.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
