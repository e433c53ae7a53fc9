package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
)

type recordingBus struct {
	calls int
	last  commands.Command
	err   error
}

func (b *recordingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	b.last = cmd
	if b.err != nil {
		return nil, b.err
	}
	return dto.BulkAvailabilityResult{Updated: 2}, nil
}

type fakeDedup struct {
	seen map[string]bool
}

func (d fakeDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return d.seen[eventID], nil
}

func message(payload string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "reservations", Value: []byte(payload)}
}

func TestReservationListenerDispatchesConfirmedBooking(t *testing.T) {
	bus := &recordingBus{}
	listener := ReservationListener{Commands: bus}

	payload := `{"id":"ev-1","type":"booking.confirmed.v1","data":{"booking_id":"bk-1","property_id":"prop-1","check_in":"2025-03-20","check_out":"2025-03-22"}}`
	if err := listener.Handle(context.Background(), message(payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if bus.calls != 1 {
		t.Fatalf("dispatched %d commands, want 1", bus.calls)
	}
	if bus.last.Key() != "availability.mark_dates_booked" {
		t.Errorf("dispatched %T", bus.last)
	}
}

func TestReservationListenerIgnoresOtherEventTypes(t *testing.T) {
	bus := &recordingBus{}
	listener := ReservationListener{Commands: bus}

	payload := `{"id":"ev-2","type":"booking.cancelled.v1","data":{"booking_id":"bk-1","property_id":"prop-1","check_in":"2025-03-20"}}`
	if err := listener.Handle(context.Background(), message(payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if bus.calls != 0 {
		t.Errorf("dispatched %d commands, want 0", bus.calls)
	}
}

func TestReservationListenerDropsUndecodablePayload(t *testing.T) {
	bus := &recordingBus{}
	listener := ReservationListener{Commands: bus}

	if err := listener.Handle(context.Background(), message("not json")); err != nil {
		t.Fatalf("undecodable payload must not stall the partition: %v", err)
	}
	if bus.calls != 0 {
		t.Errorf("dispatched %d commands, want 0", bus.calls)
	}
}

func TestReservationListenerDropsIncompleteEvents(t *testing.T) {
	bus := &recordingBus{}
	listener := ReservationListener{Commands: bus}

	payload := `{"id":"ev-3","type":"booking.confirmed.v1","data":{"booking_id":"bk-1"}}`
	if err := listener.Handle(context.Background(), message(payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if bus.calls != 0 {
		t.Errorf("dispatched %d commands, want 0", bus.calls)
	}
}

func TestReservationListenerSkipsSeenEvents(t *testing.T) {
	bus := &recordingBus{}
	listener := ReservationListener{
		Commands: bus,
		Inbox:    fakeDedup{seen: map[string]bool{"ev-4": true}},
	}

	payload := `{"id":"ev-4","type":"booking.confirmed.v1","data":{"booking_id":"bk-1","property_id":"prop-1","check_in":"2025-03-20","check_out":"2025-03-22"}}`
	if err := listener.Handle(context.Background(), message(payload)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if bus.calls != 0 {
		t.Errorf("seen event dispatched %d commands, want 0", bus.calls)
	}
}

func TestReservationListenerPropagatesDispatchErrors(t *testing.T) {
	bus := &recordingBus{err: context.DeadlineExceeded}
	listener := ReservationListener{Commands: bus}

	payload := `{"id":"ev-5","type":"booking.confirmed.v1","data":{"booking_id":"bk-1","property_id":"prop-1","check_in":"2025-03-20","check_out":"2025-03-22"}}`
	if err := listener.Handle(context.Background(), message(payload)); err == nil {
		t.Error("dispatch failures must bubble up so the offset is not marked")
	}
}
