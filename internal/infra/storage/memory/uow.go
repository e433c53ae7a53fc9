package memory

import (
	"context"
	"errors"

	"stayflow/internal/app/uow"
	domainavailability "stayflow/internal/domain/availability"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo   domainproperty.Repository
	WeeklyRepo       domainpricing.WeeklyRepository
	OverridesRepo    domainpricing.OverrideRepository
	RatePlansRepo    domainrateplan.Repository
	PricesRepo       domainrateplan.PriceRepository
	AvailabilityRepo domainavailability.Repository
}

// NewFactory builds a factory over fresh empty stores.
func NewFactory() Factory {
	return Factory{
		PropertiesRepo:   NewPropertyRepository(),
		WeeklyRepo:       NewWeeklyPricingRepository(),
		OverridesRepo:    NewOverrideRepository(),
		RatePlansRepo:    NewRatePlanRepository(),
		PricesRepo:       NewPriceRepository(),
		AvailabilityRepo: NewAvailabilityRepository(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.WeeklyRepo == nil || f.OverridesRepo == nil ||
		f.RatePlansRepo == nil || f.PricesRepo == nil || f.AvailabilityRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties:   f.PropertiesRepo,
		weekly:       f.WeeklyRepo,
		overrides:    f.OverridesRepo,
		ratePlans:    f.RatePlansRepo,
		prices:       f.PricesRepo,
		availability: f.AvailabilityRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	properties   domainproperty.Repository
	weekly       domainpricing.WeeklyRepository
	overrides    domainpricing.OverrideRepository
	ratePlans    domainrateplan.Repository
	prices       domainrateplan.PriceRepository
	availability domainavailability.Repository
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }

func (u *Unit) WeeklyPricing() domainpricing.WeeklyRepository { return u.weekly }

func (u *Unit) Overrides() domainpricing.OverrideRepository { return u.overrides }

func (u *Unit) RatePlans() domainrateplan.Repository { return u.ratePlans }

func (u *Unit) Prices() domainrateplan.PriceRepository { return u.prices }

func (u *Unit) Availability() domainavailability.Repository { return u.availability }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }
