package commands_test

import (
	"context"
	"errors"
	"testing"

	"routeplanner/internal/core/application/usecases/commands"
	"routeplanner/internal/core/domain/model/kernel"
	"routeplanner/internal/core/domain/model/order"
	"routeplanner/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Update(_ context.Context, _ *order.Order) error { return nil }
func (m *MockOrderRepository) Get(_ context.Context, _ kernel.UUID) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockOrderRepository) GetAllPending(_ context.Context) ([]*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

func newCreateOrderCommand(t *testing.T) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), order.Details{
		Client:   "Bar do Zé",
		Address:  "Rua das Flores, 10",
		Items:    []order.LineItem{{ProductID: "chopp-30", ProductName: "Chopp 30L", Quantity: 2}},
		Volume:   60,
		Period:   order.Morning,
		Priority: order.Normal,
		Location: kernel.MustNewLocation(1, 2),
	})
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	events := &recordingPublisher{}

	h := commands.NewCreateOrderCommandHandler(factory, events, fixedClock(dispatchTime), nil)
	err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	assert.Equal(t, []string{ports.EventOrderPendingAdded}, events.types())
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly
	factory := new(MockOrderUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, nil, nil, nil)
	err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateOrderCommandHandler_Handle_InvalidDetails(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), order.Details{Client: "Bar do Zé"})
	require.NoError(t, err)

	factory := new(MockOrderUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, nil, nil, nil)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
	factory.AssertNotCalled(t, "Create")
}

// Any storage failure leaves the catalog untouched and announces nothing.
func TestCreateOrderCommandHandler_Handle_StorageFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tests := map[string]struct {
		beginErr, addErr, commitErr error
	}{
		"begin fails":  {beginErr: boom},
		"add fails":    {addErr: boom},
		"commit fails": {commitErr: boom},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			repo := new(MockOrderRepository)
			uow := new(MockOrderUoW)

			uow.On("Begin", ctx).Return(tt.beginErr).Once()
			if tt.beginErr == nil {
				uow.On("OrderRepository").Return(repo).Once()
				repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(tt.addErr).Once()
				if tt.addErr == nil {
					uow.On("Commit", ctx).Return(tt.commitErr).Once()
				}
				uow.On("Rollback", ctx).Return(nil).Once()
			}

			factory := new(MockOrderUoWFactory)
			factory.On("Create").Return(uow).Once()
			events := &recordingPublisher{}

			err := commands.NewCreateOrderCommandHandler(factory, events, nil, nil).Handle(ctx, newCreateOrderCommand(t))

			require.ErrorIs(t, err, boom)
			repo.AssertExpectations(t)
			uow.AssertExpectations(t)
			assert.Empty(t, events.types())
		})
	}
}
