package dto

import (
	"stayflow/internal/domain/availability"
	"stayflow/internal/domain/calendar"
)

// AvailabilitySlot is one per-date availability record.
type AvailabilitySlot struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// AvailabilityRange wraps a range query result.
type AvailabilityRange struct {
	PropertyID string             `json:"property_id"`
	Slots      []AvailabilitySlot `json:"slots"`
}

// FailedUpdate records one entry a bulk availability write could not apply.
type FailedUpdate struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// BulkAvailabilityResult reports partial success of a bulk write.
type BulkAvailabilityResult struct {
	Updated int            `json:"updated"`
	Failed  []FailedUpdate `json:"failed"`
}

func MapSlot(slot availability.Slot) AvailabilitySlot {
	return AvailabilitySlot{
		Date:      calendar.FormatLocal(slot.Date),
		Status:    string(slot.Status),
		Available: slot.Open(),
		Reason:    slot.Reason,
	}
}

func MapAvailabilityRange(propertyID string, slots []availability.Slot) AvailabilityRange {
	out := AvailabilityRange{PropertyID: propertyID, Slots: make([]AvailabilitySlot, 0, len(slots))}
	for _, slot := range slots {
		out.Slots = append(out.Slots, MapSlot(slot))
	}
	return out
}
