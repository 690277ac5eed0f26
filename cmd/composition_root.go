package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpin "routeplanner/internal/adapters/in/http"
	"routeplanner/internal/adapters/out/events"
	"routeplanner/internal/adapters/out/fleetfile"
	"routeplanner/internal/adapters/out/memory"
	"routeplanner/internal/adapters/out/postgres"
	"routeplanner/internal/adapters/out/postgres/vehiclerepo"
	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"
	"routeplanner/internal/jobs"
	"routeplanner/internal/metrics"
)

// CompositionRoot owns the process-wide dependencies and builds handlers
// from them.
type CompositionRoot struct {
	configs    Config
	logger     *slog.Logger
	uowFactory ports.UnitOfWorkFactory
	vehicles   ports.VehicleRepository
	locks      *services.RouteLocks
	broker     *events.Broker
	publisher  ports.EventPublisher
	policy     route.TravelPolicy
	optimizer  services.RouteOptimizer
	closers    []func() error
}

// NewCompositionRoot opens the configured storage and event transport. The
// fleet file is read once; with postgres storage it is upserted into the
// vehicles table so the database stays the source for routes.
func NewCompositionRoot(ctx context.Context, configs Config, logger *slog.Logger) (*CompositionRoot, error) {
	policy, err := configs.TravelPolicy()
	if err != nil {
		return nil, err
	}
	optimizer, err := configs.Optimizer()
	if err != nil {
		return nil, err
	}
	storage, err := configs.StorageKind()
	if err != nil {
		return nil, err
	}

	fleet, err := fleetfile.Load(configs.FleetPath())
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		configs:   configs,
		logger:    logger,
		locks:     services.NewRouteLocks(),
		broker:    events.NewBroker(),
		policy:    policy,
		optimizer: optimizer,
	}

	switch storage {
	case StoragePostgres:
		if err = c.openPostgres(ctx, fleet); err != nil {
			return nil, err
		}
	default:
		c.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
		c.vehicles = fleet
		logger.Info("using in-memory storage")
	}

	if err = c.openEvents(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) openPostgres(ctx context.Context, fleet *fleetfile.Repository) error {
	db, err := postgres.Connect(ctx, c.configs.DSN())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	c.closers = append(c.closers, sqlDB.Close)

	if err = postgres.Migrate(db); err != nil {
		_ = c.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	vehicles := vehiclerepo.NewGormVehicleRepository(db)
	all, err := fleet.GetAll(ctx)
	if err != nil {
		_ = c.Close()
		return err
	}
	if err = vehicles.Save(ctx, all...); err != nil {
		_ = c.Close()
		return fmt.Errorf("seed fleet: %w", err)
	}

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
	c.vehicles = vehicles
	c.logger.Info("postgres connection established", "vehicles", len(all))
	return nil
}

// openEvents chooses the event path. With Redis every event goes out through
// Redis and comes back to the local broker through the relay, so each
// instance's websocket clients see every instance's commits exactly once.
func (c *CompositionRoot) openEvents(ctx context.Context) error {
	var out events.FanOut
	if c.configs.RedisURL == "" {
		out = append(out, c.broker)
	} else {
		rp, err := events.NewRedisPublisher(c.configs.RedisURL, c.logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, rp.Close)

		if err = rp.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}

		relayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.closers = append(c.closers, func() error { cancel(); return nil })
		if err = rp.Relay(relayCtx, c.broker); err != nil {
			return err
		}
		out = append(out, rp)
		c.logger.Info("publishing events through redis")
	}

	c.publisher = metrics.CountingPublisher{Next: out}
	return nil
}

// Close releases connections in reverse order of opening.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *CompositionRoot) commandUoWs() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateCreateRouteCommandHandler() commands.CreateRouteCommandHandler {
	return commands.NewCreateRouteCommandHandler(c.commandUoWs(), c.vehicles, c.locks, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateAssignOrderCommandHandler() commands.AssignOrderCommandHandler {
	return commands.NewAssignOrderCommandHandler(c.commandUoWs(), c.locks, c.publisher, c.policy, nil, c.logger)
}

func (c *CompositionRoot) CreateUnassignOrderCommandHandler() commands.UnassignOrderCommandHandler {
	return commands.NewUnassignOrderCommandHandler(c.commandUoWs(), c.locks, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateRouteLifecycleCommandHandler() commands.RouteLifecycleCommandHandler {
	return commands.NewRouteLifecycleCommandHandler(c.commandUoWs(), c.locks, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateConfirmOptimizationCommandHandler() commands.ConfirmOptimizationCommandHandler {
	return commands.NewConfirmOptimizationCommandHandler(c.commandUoWs(), c.locks, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateDeliveryCommandHandler() commands.DeliveryCommandHandler {
	return commands.NewDeliveryCommandHandler(c.commandUoWs(), c.locks, c.publisher, nil, c.logger)
}

func (c *CompositionRoot) CreateGetRoutesByStatusQueryHandler() queries.GetRoutesByStatusQueryHandler {
	return queries.NewGetRoutesByStatusQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:  c.CreateCreateOrderCommandHandler(),
		CreateRoute:  c.CreateCreateRouteCommandHandler(),
		Assign:       c.CreateAssignOrderCommandHandler(),
		Unassign:     c.CreateUnassignOrderCommandHandler(),
		Lifecycle:    c.CreateRouteLifecycleCommandHandler(),
		Optimization: c.CreateConfirmOptimizationCommandHandler(),
		Delivery:     c.CreateDeliveryCommandHandler(),

		PendingOrders:   queries.NewGetPendingOrdersQueryHandler(c.uowFactory),
		Route:           queries.NewGetRouteQueryHandler(c.uowFactory),
		RoutesByStatus:  c.CreateGetRoutesByStatusQueryHandler(),
		OptimizeRoute:   queries.NewOptimizeRouteQueryHandler(c.uowFactory, c.optimizer),
		DeliveryRecords: queries.NewGetDeliveryRecordsQueryHandler(c.uowFactory),
		Vehicles:        queries.NewGetVehiclesQueryHandler(c.vehicles),
	}, c.broker, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	tracking := jobs.NewRouteTrackingJob(
		c.CreateGetRoutesByStatusQueryHandler(),
		c.CreateRouteLifecycleCommandHandler(),
		c.configs.TrackingSchedule,
		c.logger,
	)
	return jobs.NewJobManager(c.logger, tracking)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
