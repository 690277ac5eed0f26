package commands_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"routeplanner/internal/adapters/out/memory"
	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/domain/model/route"
	"routeplanner/internal/core/domain/model/vehicle"
	"routeplanner/internal/core/domain/services"
	"routeplanner/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, ...ports.Event) error { return p.err }

func TestCommands_PublishFailureKeepsCommitAndIsLogged(t *testing.T) {
	// Given
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	publisher := failingPublisher{err: errors.New("redis: connection refused")}

	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store)
	uows := uowFactory{factory: factory}
	locks := services.NewRouteLocks()
	clock := fixedClock(dispatchTime)

	v, err := vehicle.NewVehicle(kernel.NewUUID(), "XYZ-9876", "Ana", 500)
	require.NoError(t, err)
	vehicles := &vehicleRepository{vehicles: map[kernel.UUID]*vehicle.Vehicle{v.ID(): v}}

	createOrder := commands.NewCreateOrderCommandHandler(orderUoWFactory{factory: factory}, publisher, clock, logger)
	createRoute := commands.NewCreateRouteCommandHandler(uows, vehicles, locks, publisher, clock, logger)
	assign := commands.NewAssignOrderCommandHandler(uows, locks, publisher, route.DefaultTravelPolicy(), clock, logger)

	orderCmd := newCreateOrderCommand(t)
	routeCmd, err := commands.NewCreateRouteCommand(kernel.NewUUID(), v.ID(), dispatchTime, order.Morning)
	require.NoError(t, err)
	assignCmd, err := commands.NewAssignOrderCommand(routeCmd.RouteID(), orderCmd.OrderID())
	require.NoError(t, err)

	// When
	require.NoError(t, createOrder.Handle(t.Context(), orderCmd))
	require.NoError(t, createRoute.Handle(t.Context(), routeCmd))
	require.NoError(t, assign.Handle(t.Context(), assignCmd))

	// Then
	assigned, err := factory.Create().RouteRepository().Get(t.Context(), routeCmd.RouteID())
	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{orderCmd.OrderID()}, assigned.OrderIDs())

	assert.Equal(t, 3, bytes.Count(logs.Bytes(), []byte("publishing events failed")))
	assert.Contains(t, logs.String(), "redis: connection refused")
	assert.Contains(t, logs.String(), "event_type="+ports.EventRouteCreated)
	assert.Contains(t, logs.String(), "route_id="+routeCmd.RouteID().String())
}
