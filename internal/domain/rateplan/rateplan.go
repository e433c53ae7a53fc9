package rateplan

import (
	"context"
	"strings"

	"stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
)

type ID string

// PlanType mirrors the cancellation-policy families a plan belongs to.
type PlanType string

const (
	TypeFullyFlexible PlanType = "FullyFlexible"
	TypeNonRefundable PlanType = "NonRefundable"
	TypeCustom        PlanType = "Custom"
)

// AdjustmentType selects how AdjustmentValue modifies the base stay total.
type AdjustmentType string

const (
	AdjustPercentage AdjustmentType = "percentage"
	AdjustFixed      AdjustmentType = "fixed"
)

// RatePlan is a named pricing policy attached to a property with its own
// price ledger and eligibility constraints. Zero-valued constraints are
// unconfigured and do not filter.
type RatePlan struct {
	ID              ID
	PropertyID      property.ID
	Name            string
	Type            PlanType
	AdjustmentType  AdjustmentType
	AdjustmentValue float64
	MinStay         float64
	MaxStay         float64
	MinGuests       int
	MaxGuests       int
	// MinAdvanceBookingDays requires the check-in to be at least this many
	// days ahead of now.
	MinAdvanceBookingDays int
	// Priority breaks ranking ties; lower is preferred.
	Priority int
	IsActive bool
}

func (p RatePlan) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return fault.InvalidInput("rate plan id is required")
	}
	if strings.TrimSpace(string(p.PropertyID)) == "" {
		return fault.InvalidInput("rate plan property is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fault.InvalidInput("rate plan name is required")
	}
	switch p.Type {
	case TypeFullyFlexible, TypeNonRefundable, TypeCustom:
	default:
		return fault.InvalidInput("unknown rate plan type %q", p.Type)
	}
	switch p.AdjustmentType {
	case AdjustPercentage, AdjustFixed:
	default:
		return fault.InvalidInput("unknown adjustment type %q", p.AdjustmentType)
	}
	return nil
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*RatePlan, error)
	ByProperty(ctx context.Context, id property.ID) ([]*RatePlan, error)
	Save(ctx context.Context, plan *RatePlan) error
}
