package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/dto"
	availabilityapp "stayflow/internal/app/handlers/availability"
)

// Dedup tracks which event ids this consumer already processed.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// ReservationListener consumes booking lifecycle CloudEvents and closes the
// booked nights on the availability calendar. Events it cannot decode are
// logged and dropped so the partition keeps moving.
type ReservationListener struct {
	Commands commands.Bus
	Inbox    Dedup
	Logger   *slog.Logger
}

type reservationEnvelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data reservationData `json:"data"`
}

type reservationData struct {
	BookingID  string `json:"booking_id"`
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

func (l ReservationListener) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env reservationEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		l.log().Warn("reservation event undecodable", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if !strings.HasPrefix(env.Type, "booking.confirmed") {
		return nil
	}
	if env.Data.BookingID == "" || env.Data.PropertyID == "" || env.Data.CheckIn == "" {
		l.log().Warn("reservation event incomplete", "event_id", env.ID, "type", env.Type)
		return nil
	}
	if l.Inbox != nil && env.ID != "" {
		seen, err := l.Inbox.Seen(ctx, env.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	cmd := availabilityapp.MarkDatesBookedCommand{
		PropertyID: env.Data.PropertyID,
		BookingID:  env.Data.BookingID,
		CheckIn:    env.Data.CheckIn,
		CheckOut:   env.Data.CheckOut,
	}
	result, err := commands.Dispatch[availabilityapp.MarkDatesBookedCommand, dto.BulkAvailabilityResult](ctx, l.Commands, cmd)
	if err != nil {
		l.log().Error("mark dates booked failed", "booking_id", env.Data.BookingID, "property_id", env.Data.PropertyID, "error", err)
		return err
	}
	l.log().Info("reservation applied", "booking_id", env.Data.BookingID, "property_id", env.Data.PropertyID, "nights", result.Updated, "failed", len(result.Failed))
	return nil
}

func (l ReservationListener) log() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

var _ MessageHandler = ReservationListener{}
