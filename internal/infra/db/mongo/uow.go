package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayflow/internal/app/uow"
	domainavailability "stayflow/internal/domain/availability"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo   domainproperty.Repository
	WeeklyRepo       domainpricing.WeeklyRepository
	OverridesRepo    domainpricing.OverrideRepository
	RatePlansRepo    domainrateplan.Repository
	PricesRepo       domainrateplan.PriceRepository
	AvailabilityRepo domainavailability.Repository
}

// NewFactory builds a factory with repositories over the given database.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:               db,
		PropertiesRepo:   NewPropertyRepository(db),
		WeeklyRepo:       NewWeeklyPricingRepository(db),
		OverridesRepo:    NewOverrideRepository(db),
		RatePlansRepo:    NewRatePlanRepository(db),
		PricesRepo:       NewPriceRepository(db),
		AvailabilityRepo: NewAvailabilityRepository(db),
	}
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		properties:   f.PropertiesRepo,
		weekly:       f.WeeklyRepo,
		overrides:    f.OverridesRepo,
		ratePlans:    f.RatePlansRepo,
		prices:       f.PricesRepo,
		availability: f.AvailabilityRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
