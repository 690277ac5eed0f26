package jobs_test

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"routeplanner/internal/adapters/out/fleetfile"
	"routeplanner/internal/adapters/out/memory"
	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/application/usecases/queries"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type uowFactory struct{ factory *memory.UnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.factory.Create() }

type orderUoWFactory struct{ factory *memory.UnitOfWorkFactory }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.factory.Create() }

func TestRouteTrackingJob_RunOnce(t *testing.T) {
	// Given an active route dispatched at 08:00
	vehicles, err := fleetfile.Parse(strings.NewReader(`
vehicles:
  - id: 0b8f4a52-3c0e-4a3a-8f59-2d5b0a7e6c01
    plate: ABC-1234
    driver: Carlos
    capacityLiters: 500
`))
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	uows := uowFactory{factory: factory}
	locks := services.NewRouteLocks()
	publisher := commands.NopPublisher()

	createOrder := commands.NewCreateOrderCommandHandler(orderUoWFactory{factory: factory}, publisher, clock, nil)
	createRoute := commands.NewCreateRouteCommandHandler(uows, vehicles, locks, publisher, clock, nil)
	assign := commands.NewAssignOrderCommandHandler(uows, locks, publisher, route.DefaultTravelPolicy(), clock, nil)
	lifecycle := commands.NewRouteLifecycleCommandHandler(uows, locks, publisher, clock, nil)

	routeID, orderID := kernel.NewUUID(), kernel.NewUUID()
	createRouteCmd, err := commands.NewCreateRouteCommand(routeID,
		kernel.MustUUIDFromString("0b8f4a52-3c0e-4a3a-8f59-2d5b0a7e6c01"), now, order.Morning)
	require.NoError(t, err)
	require.NoError(t, createRoute.Handle(t.Context(), createRouteCmd))

	createOrderCmd, err := commands.NewCreateOrderCommand(orderID, order.Details{
		Client:     "Bar do Zé",
		Address:    "Rua das Flores, 10",
		Items:      []order.LineItem{{ProductID: "chopp-30", Quantity: 2}},
		Volume:     60,
		Period:     order.Morning,
		Priority:   order.Normal,
		DistanceKm: 4,
		Location:   kernel.MustNewLocation(1, 1),
	})
	require.NoError(t, err)
	require.NoError(t, createOrder.Handle(t.Context(), createOrderCmd))

	assignCmd, err := commands.NewAssignOrderCommand(routeID, orderID)
	require.NoError(t, err)
	require.NoError(t, assign.Handle(t.Context(), assignCmd))

	finalizeCmd, err := commands.NewFinalizeRouteCommand(routeID)
	require.NoError(t, err)
	require.NoError(t, lifecycle.Finalize(t.Context(), finalizeCmd))

	job := jobs.NewRouteTrackingJob(queries.NewGetRoutesByStatusQueryHandler(factory), lifecycle, "", discard)

	// When nothing is late yet
	assert.Equal(t, 0, job.RunOnce(t.Context()))

	// When the clock passes the planned arrival
	now = now.Add(5 * time.Hour)

	// Then the route is relabelled
	assert.Equal(t, 1, job.RunOnce(t.Context()))
	r, err := factory.Create().RouteRepository().Get(t.Context(), routeID)
	require.NoError(t, err)
	assert.Equal(t, route.Delayed, r.Tracking())
}

func TestRouteTrackingJob_InvalidSchedule(t *testing.T) {
	job := jobs.NewRouteTrackingJob(queries.GetRoutesByStatusQueryHandler{}, commands.RouteLifecycleCommandHandler{},
		"every now and then", discard)

	assert.Error(t, job.Start())
}

type fakeJob struct {
	name     string
	startErr error
	log      *[]string
}

func (j fakeJob) Name() string { return j.name }

func (j fakeJob) Start() error {
	if j.startErr != nil {
		return j.startErr
	}
	*j.log = append(*j.log, "start "+j.name)
	return nil
}

func (j fakeJob) Stop() { *j.log = append(*j.log, "stop "+j.name) }

func TestJobManager(t *testing.T) {
	t.Run("stops in reverse order", func(t *testing.T) {
		var log []string
		jm := jobs.NewJobManager(discard, fakeJob{name: "a", log: &log}, fakeJob{name: "b", log: &log})

		require.NoError(t, jm.StartAll())
		jm.StopAll()

		assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
	})

	t.Run("failed start stops what already runs", func(t *testing.T) {
		var log []string
		boom := errors.New("boom")
		jm := jobs.NewJobManager(discard,
			fakeJob{name: "a", log: &log},
			fakeJob{name: "b", log: &log, startErr: boom},
			fakeJob{name: "c", log: &log},
		)

		err := jm.StartAll()

		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"start a", "stop a"}, log)
	})
}
