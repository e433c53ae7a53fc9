package rateplan

import "time"

type PricesChangedEvent struct {
	RatePlanID ID
	Dates      []string
	At         time.Time
}

func (e PricesChangedEvent) EventName() string     { return "rateplan.prices_changed" }
func (e PricesChangedEvent) AggregateID() string   { return string(e.RatePlanID) }
func (e PricesChangedEvent) OccurredAt() time.Time { return e.At }

type PricesDeletedEvent struct {
	RatePlanID ID
	Deleted    int
	At         time.Time
}

func (e PricesDeletedEvent) EventName() string     { return "rateplan.prices_deleted" }
func (e PricesDeletedEvent) AggregateID() string   { return string(e.RatePlanID) }
func (e PricesDeletedEvent) OccurredAt() time.Time { return e.At }
