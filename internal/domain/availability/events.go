package availability

import (
	"time"

	"stayflow/internal/domain/property"
)

type SlotsUpdatedEvent struct {
	PropertyID property.ID
	Dates      []string
	Status     Status
	At         time.Time
}

func (e SlotsUpdatedEvent) EventName() string     { return "availability.slots_updated" }
func (e SlotsUpdatedEvent) AggregateID() string   { return string(e.PropertyID) }
func (e SlotsUpdatedEvent) OccurredAt() time.Time { return e.At }

type DatesBookedEvent struct {
	PropertyID property.ID
	BookingID  string
	Dates      []string
	At         time.Time
}

func (e DatesBookedEvent) EventName() string     { return "availability.dates_booked" }
func (e DatesBookedEvent) AggregateID() string   { return string(e.PropertyID) }
func (e DatesBookedEvent) OccurredAt() time.Time { return e.At }
