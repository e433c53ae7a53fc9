package availability

import (
	"context"
	"strings"
	"time"

	"stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
)

// Status describes one property-date. Absent records mean available.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBlocked     Status = "blocked"
	StatusBooked      Status = "booked"
	StatusMaintenance Status = "maintenance"
)

// ParseStatus validates a wire value.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusAvailable:
		return StatusAvailable, nil
	case StatusBlocked:
		return StatusBlocked, nil
	case StatusBooked:
		return StatusBooked, nil
	case StatusMaintenance:
		return StatusMaintenance, nil
	default:
		return "", fault.InvalidInput("unknown availability status %q", value)
	}
}

// StatusFromBool collapses legacy boolean payloads to available/blocked.
func StatusFromBool(available bool) Status {
	if available {
		return StatusAvailable
	}
	return StatusBlocked
}

// Slot is one per-property, per-date availability record, keyed
// (property, date).
type Slot struct {
	PropertyID property.ID
	Date       time.Time
	Status     Status
	Reason     string
	UpdatedAt  time.Time
}

// Open reports whether the date can still be booked.
func (s Slot) Open() bool {
	return s.Status == StatusAvailable
}

// Repository stores availability slots. Upserts are atomic per record; bulk
// callers iterate and report partial failures themselves.
type Repository interface {
	// Range returns slots within [start, end]; zero bounds mean unbounded.
	Range(ctx context.Context, id property.ID, start, end time.Time) ([]Slot, error)
	Upsert(ctx context.Context, slot Slot) error
}
