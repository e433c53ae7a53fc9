package pricing

import (
	"time"

	"stayflow/internal/domain/property"
)

type WeeklyPricingReplacedEvent struct {
	PropertyID property.ID
	At         time.Time
}

func (e WeeklyPricingReplacedEvent) EventName() string     { return "pricing.weekly_replaced" }
func (e WeeklyPricingReplacedEvent) AggregateID() string   { return string(e.PropertyID) }
func (e WeeklyPricingReplacedEvent) OccurredAt() time.Time { return e.At }

type OverridesAppliedEvent struct {
	PropertyID property.ID
	Dates      []string
	At         time.Time
}

func (e OverridesAppliedEvent) EventName() string     { return "pricing.overrides_applied" }
func (e OverridesAppliedEvent) AggregateID() string   { return string(e.PropertyID) }
func (e OverridesAppliedEvent) OccurredAt() time.Time { return e.At }

type OverridesDeletedEvent struct {
	PropertyID property.ID
	Dates      []string
	Deleted    int
	At         time.Time
}

func (e OverridesDeletedEvent) EventName() string     { return "pricing.overrides_deleted" }
func (e OverridesDeletedEvent) AggregateID() string   { return string(e.PropertyID) }
func (e OverridesDeletedEvent) OccurredAt() time.Time { return e.At }
