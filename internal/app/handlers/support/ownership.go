package support

import (
	"context"
	"strings"

	"stayflow/internal/app/uow"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
	"stayflow/internal/domain/shared/fault"
)

// OwnedProperty loads a property and verifies ownership. A missing property
// and an ownership mismatch are indistinguishable to the caller so existence
// never leaks to non-owners.
func OwnedProperty(ctx context.Context, unit uow.UnitOfWork, propertyID, ownerID string) (*domainproperty.Property, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, fault.InvalidInput("property id is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fault.NotFound("property not found")
	}
	prop, err := unit.Properties().ByID(ctx, domainproperty.ID(propertyID))
	if err != nil || !prop.OwnedBy(domainproperty.OwnerID(ownerID)) {
		return nil, fault.NotFound("property not found")
	}
	return prop, nil
}

// OwnedRatePlan verifies ownership through the rate plan -> property -> owner
// chain and returns the plan.
func OwnedRatePlan(ctx context.Context, unit uow.UnitOfWork, ratePlanID, ownerID string) (*domainrateplan.RatePlan, error) {
	if strings.TrimSpace(ratePlanID) == "" {
		return nil, fault.InvalidInput("rate plan id is required")
	}
	plan, err := unit.RatePlans().ByID(ctx, domainrateplan.ID(ratePlanID))
	if err != nil {
		return nil, fault.NotFound("rate plan not found")
	}
	if _, err := OwnedProperty(ctx, unit, string(plan.PropertyID), ownerID); err != nil {
		return nil, fault.NotFound("rate plan not found")
	}
	return plan, nil
}
