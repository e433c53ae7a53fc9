package uow

import (
	"context"

	domainavailability "stayflow/internal/domain/availability"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	WeeklyPricing() domainpricing.WeeklyRepository
	Overrides() domainpricing.OverrideRepository
	RatePlans() domainrateplan.Repository
	Prices() domainrateplan.PriceRepository
	Availability() domainavailability.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
