package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stayflow/internal/app/commands"
	availabilityapp "stayflow/internal/app/handlers/availability"
	pricingapp "stayflow/internal/app/handlers/pricing"
	rateplanapp "stayflow/internal/app/handlers/rateplan"
	"stayflow/internal/app/middleware"
	appoutbox "stayflow/internal/app/outbox"
	"stayflow/internal/app/queries"
	authsvc "stayflow/internal/app/services/auth"
	"stayflow/internal/app/uow"
	domainauth "stayflow/internal/domain/auth"
	"stayflow/internal/domain/calendar"
	domainpricing "stayflow/internal/domain/pricing"
	domainproperty "stayflow/internal/domain/property"
	domainrateplan "stayflow/internal/domain/rateplan"
	domainuser "stayflow/internal/domain/user"
	"stayflow/internal/infra/broker/kafka"
	"stayflow/internal/infra/config"
	mongodb "stayflow/internal/infra/db/mongo"
	ginserver "stayflow/internal/infra/http/gin"
	"stayflow/internal/infra/inbox"
	"stayflow/internal/infra/obs"
	infraoutbox "stayflow/internal/infra/outbox"
	"stayflow/internal/infra/security"
	"stayflow/internal/infra/storage/memory"
	"stayflow/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := cfg.FixturesDir
	if fixturesPath == "" {
		fixturesPath = defaultFixturesPath()
	}
	if err := app.loadFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err, "path", fixturesPath)
	}

	for _, task := range app.background {
		go task(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	uowFactory uow.UoWFactory
	ready      func() error
	background []func(ctx context.Context)
	closers    []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func() error { return nil }}

	var (
		uowFactory uow.UoWFactory
		outboxImpl appoutbox.Outbox
		idStore    middleware.IdempotencyStore
		users      domainuser.Repository
		sessions   domainauth.SessionStore
		dedup      kafka.Dedup
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		uowFactory = mongodb.NewFactory(client.DB)
		outboxStore := infraoutbox.NewStore(client.DB)
		outboxImpl = outboxStore
		idStore = mongodb.NewIdempotencyStore(client.DB)
		users = mongodb.NewUserRepository(client.DB)
		sessions = mongodb.NewSessionStore(client.DB)
		dedup = inbox.NewStore(client.DB, cfg.ConsumerGroup)
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if cfg.KafkaEnabled() {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, fmt.Errorf("kafka producer: %w", err)
			}
			app.closers = append(app.closers, func() { _ = producer.Close() })
			worker := &infraoutbox.Worker{
				Store:       outboxStore,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			app.background = append(app.background, func(ctx context.Context) {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			})
		}
	default:
		uowFactory = memory.NewFactory()
		outboxImpl = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
		users = memory.NewUserRepository()
		sessions = memory.NewSessionStore()
	}
	app.uowFactory = uowFactory

	var uploader s3.Uploader
	if cfg.S3Enabled() {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		uploader = client
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, pricingapp.SetWeeklyPricingCommand{}.Key(), &pricingapp.SetWeeklyPricingHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, pricingapp.SetDateOverridesCommand{}.Key(), &pricingapp.SetDateOverridesHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, pricingapp.DeleteDateOverridesCommand{}.Key(), &pricingapp.DeleteDateOverridesHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, availabilityapp.SetAvailabilityCommand{}.Key(), &availabilityapp.SetAvailabilityHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, availabilityapp.SetBulkAvailabilityCommand{}.Key(), &availabilityapp.SetBulkAvailabilityHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, availabilityapp.MarkDatesBookedCommand{}.Key(), &availabilityapp.MarkDatesBookedHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rateplanapp.SetPriceCommand{}.Key(), &rateplanapp.SetPriceHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rateplanapp.DeletePriceCommand{}.Key(), &rateplanapp.DeletePriceHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rateplanapp.BulkSetPricesCommand{}.Key(), &rateplanapp.BulkSetPricesHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rateplanapp.BulkDeletePricesCommand{}.Key(), &rateplanapp.BulkDeletePricesHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rateplanapp.CopyPricesCommand{}.Key(), &rateplanapp.CopyPricesHandler{
		UoWFactory: uowFactory, Outbox: outboxImpl, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, rateplanapp.ExportPricesCommand{}.Key(), &rateplanapp.ExportPricesHandler{
		UoWFactory: uowFactory, Uploader: uploader,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, pricingapp.GetWeeklyPricingQuery{}.Key(), &pricingapp.GetWeeklyPricingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, pricingapp.GetPricingCalendarQuery{}.Key(), &pricingapp.GetPricingCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, pricingapp.GetPublicPricingCalendarQuery{}.Key(), &pricingapp.GetPublicPricingCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.GetAvailabilityQuery{}.Key(), &availabilityapp.GetAvailabilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.GetPublicAvailabilityQuery{}.Key(), &availabilityapp.GetPublicAvailabilityHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rateplanapp.GetPricesQuery{}.Key(), &rateplanapp.GetPricesHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rateplanapp.GetPriceStatisticsQuery{}.Key(), &rateplanapp.GetPriceStatisticsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rateplanapp.GetPriceGapsQuery{}.Key(), &rateplanapp.GetPriceGapsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rateplanapp.GetBookingOptionsQuery{}.Key(), &rateplanapp.GetBookingOptionsHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxImpl),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		Users:      users,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	if cfg.KafkaEnabled() {
		listener := kafka.ReservationListener{
			Commands: commandBusWithMiddleware,
			Inbox:    dedup,
			Logger:   logger,
		}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, nil, listener)
		if err != nil {
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		app.closers = append(app.closers, func() { _ = consumer.Close() })
		app.background = append(app.background, func(ctx context.Context) {
			if err := consumer.Run(ctx, []string{cfg.ReservationsTopic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reservations consumer stopped", "error", err)
			}
		})
	}

	app.handlers = ginserver.Handlers{
		Pricing: ginserver.PricingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Availability: ginserver.AvailabilityHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		RatePlan: ginserver.RatePlanHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Auth: ginserver.AuthHandler{
			Service: authService,
			Logger:  logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{
			Service: authService,
			Logger:  logger,
		}.Handle,
	}
	return app, nil
}

func (a *application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("fixtures file empty", "path", path)
		return nil
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	unit, err := a.uowFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	now := time.Now()
	for _, fx := range fixtures {
		prop, err := domainproperty.New(domainproperty.CreateParams{
			ID:        domainproperty.ID(fx.ID),
			Owner:     domainproperty.OwnerID(fx.Owner),
			Title:     fx.Title,
			Currency:  fx.Currency,
			MaxGuests: fx.MaxGuests,
			Now:       now,
		})
		if err != nil {
			logger.Error("fixture property invalid", "property_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Properties().Save(ctx, prop); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		if len(fx.WeeklyRates) > 0 {
			weekly, err := weeklyFromFixture(prop.ID, fx.WeeklyRates, now)
			if err != nil {
				logger.Error("fixture weekly pricing invalid", "property_id", fx.ID, "error", err)
			} else if err := unit.WeeklyPricing().Replace(ctx, weekly); err != nil {
				logger.Error("cannot store fixture weekly pricing", "property_id", fx.ID, "error", err)
			}
		}
		for _, rp := range fx.RatePlans {
			plan := &domainrateplan.RatePlan{
				ID:                    domainrateplan.ID(rp.ID),
				PropertyID:            prop.ID,
				Name:                  rp.Name,
				Type:                  domainrateplan.PlanType(rp.Type),
				AdjustmentType:        domainrateplan.AdjustmentType(rp.AdjustmentType),
				AdjustmentValue:       rp.AdjustmentValue,
				MinStay:               rp.MinStay,
				MaxStay:               rp.MaxStay,
				MinGuests:             rp.MinGuests,
				MaxGuests:             rp.MaxGuests,
				MinAdvanceBookingDays: rp.MinAdvanceBookingDays,
				Priority:              rp.Priority,
				IsActive:              rp.IsActive,
			}
			if err := plan.Validate(); err != nil {
				logger.Error("fixture rate plan invalid", "rate_plan_id", rp.ID, "error", err)
				continue
			}
			if err := unit.RatePlans().Save(ctx, plan); err != nil {
				logger.Error("cannot store fixture rate plan", "rate_plan_id", rp.ID, "error", err)
			}
		}
		logger.Info("property fixture imported", "property_id", prop.ID)
	}
	return unit.Commit(ctx)
}

func weeklyFromFixture(propertyID domainproperty.ID, rates map[string]fixtureDayRate, now time.Time) (domainpricing.WeeklyBasePricing, error) {
	weekly := domainpricing.WeeklyBasePricing{
		PropertyID: propertyID,
		Rates:      make(map[calendar.Weekday]domainpricing.DayRate, len(rates)),
		UpdatedAt:  now.UTC(),
	}
	for name, rate := range rates {
		day, err := calendar.ParseWeekday(name)
		if err != nil {
			return domainpricing.WeeklyBasePricing{}, err
		}
		weekly.Rates[day] = domainpricing.DayRate{FullDay: rate.FullDay, HalfDay: rate.HalfDay}
	}
	if err := weekly.Validate(); err != nil {
		return domainpricing.WeeklyBasePricing{}, err
	}
	return weekly, nil
}

type propertyFixture struct {
	ID          string                    `json:"id"`
	Owner       string                    `json:"owner"`
	Title       string                    `json:"title"`
	Currency    string                    `json:"currency"`
	MaxGuests   int                       `json:"max_guests"`
	WeeklyRates map[string]fixtureDayRate `json:"weekly_rates"`
	RatePlans   []ratePlanFixture         `json:"rate_plans"`
}

type fixtureDayRate struct {
	FullDay float64 `json:"full_day"`
	HalfDay float64 `json:"half_day"`
}

type ratePlanFixture struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Type                  string  `json:"type"`
	AdjustmentType        string  `json:"adjustment_type"`
	AdjustmentValue       float64 `json:"adjustment_value"`
	MinStay               float64 `json:"min_stay"`
	MaxStay               float64 `json:"max_stay"`
	MinGuests             int     `json:"min_guests"`
	MaxGuests             int     `json:"max_guests"`
	MinAdvanceBookingDays int     `json:"min_advance_booking_days"`
	Priority              int     `json:"priority"`
	IsActive              bool    `json:"is_active"`
}

func defaultFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "properties.json"),
		filepath.Join("deploy", "data", "properties.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
