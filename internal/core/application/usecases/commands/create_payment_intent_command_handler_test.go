package commands_test

import (
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustIntentCommand(t *testing.T, orderID kernel.UUID) commands.CreatePaymentIntentCommand {
	t.Helper()
	cmd, err := commands.NewCreatePaymentIntentCommand(orderID)
	require.NoError(t, err)
	return cmd
}

func TestCreatePaymentIntentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	testOrder, err := order.NewOrder(kernel.NewUUID(), "customer-1", 25000, nil)
	require.NoError(t, err)
	cmd := mustIntentCommand(t, testOrder.ID())

	intent := ports.PaymentIntent{
		IntentID:        "pi_1",
		PaymentMethodID: "pm_1",
		QRImageURL:      "https://pay.example/qr/pi_1.png",
	}

	orderRepo := new(MockOrderRepository)
	snapshotUoW := new(MockUoW)
	txUoW := new(MockUoW)
	gateway := new(MockPaymentGateway)

	snapshotUoW.On("OrderRepository").Return(orderRepo)
	orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Twice()
	gateway.On("CreateQRIntent", ctx, testOrder.ID(), int64(25000)).Return(intent, nil).Once()

	txUoW.On("Begin", ctx).Return(nil).Once()
	txUoW.On("OrderRepository").Return(orderRepo)
	orderRepo.On("UpdatePayment", ctx, testOrder).Return(nil).Once()
	txUoW.On("Commit", ctx).Return(nil).Once()
	txUoW.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(snapshotUoW).Once()
	factory.On("Create").Return(txUoW).Once()

	handler := commands.NewCreatePaymentIntentCommandHandler(factory, gateway)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "pi_1", result.IntentID)
	assert.Equal(t, "https://pay.example/qr/pi_1.png", result.QRImageURL)

	assert.Equal(t, order.PaymentPending, testOrder.PaymentStatus())
	assert.Equal(t, "paymongo", testOrder.PaymentProvider())
	assert.Equal(t, "pi_1", testOrder.PaymentIntentID())

	orderRepo.AssertExpectations(t)
	gateway.AssertExpectations(t)
	txUoW.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreatePaymentIntentCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreatePaymentIntentCommand{} // not constructed properly

	factory := new(MockOrderUoWFactory)
	gateway := new(MockPaymentGateway)
	handler := commands.NewCreatePaymentIntentCommandHandler(factory, gateway)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrCreatePaymentIntentCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCreatePaymentIntentCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd := mustIntentCommand(t, orderID)

	orderRepo := new(MockOrderRepository)
	snapshotUoW := new(MockUoW)
	snapshotUoW.On("OrderRepository").Return(orderRepo)
	orderRepo.On("Get", ctx, orderID).Return(nil, errs.ErrObjectNotFound).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(snapshotUoW).Once()
	gateway := new(MockPaymentGateway)

	handler := commands.NewCreatePaymentIntentCommandHandler(factory, gateway)
	_, err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	gateway.AssertNotCalled(t, "CreateQRIntent", ctx, mock.Anything, mock.Anything)
}

func TestCreatePaymentIntentCommandHandler_Handle_GatewayError(t *testing.T) {
	ctx := t.Context()
	testOrder, err := order.NewOrder(kernel.NewUUID(), "customer-1", 25000, nil)
	require.NoError(t, err)
	cmd := mustIntentCommand(t, testOrder.ID())

	orderRepo := new(MockOrderRepository)
	snapshotUoW := new(MockUoW)
	snapshotUoW.On("OrderRepository").Return(orderRepo)
	orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once()

	gateway := new(MockPaymentGateway)
	gateway.On("CreateQRIntent", ctx, testOrder.ID(), int64(25000)).
		Return(ports.PaymentIntent{}, errors.New("gateway unreachable")).
		Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(snapshotUoW).Once()

	handler := commands.NewCreatePaymentIntentCommandHandler(factory, gateway)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "create provider intent: gateway unreachable")
	assert.Equal(t, order.PaymentUnset, testOrder.PaymentStatus())
	factory.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreatePaymentIntentCommandHandler_Handle_OrderAlreadyPaid(t *testing.T) {
	ctx := t.Context()
	testOrder, err := order.NewOrder(kernel.NewUUID(), "customer-1", 25000, nil)
	require.NoError(t, err)
	require.NoError(t, testOrder.AttachPaymentIntent("paymongo", "pi_0", time.Now()))
	require.NoError(t, testOrder.MarkPaid("pay_1", time.Now()))
	cmd := mustIntentCommand(t, testOrder.ID())

	intent := ports.PaymentIntent{IntentID: "pi_1"}

	orderRepo := new(MockOrderRepository)
	snapshotUoW := new(MockUoW)
	txUoW := new(MockUoW)
	gateway := new(MockPaymentGateway)

	snapshotUoW.On("OrderRepository").Return(orderRepo)
	orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Twice()
	gateway.On("CreateQRIntent", ctx, testOrder.ID(), int64(25000)).Return(intent, nil).Once()

	txUoW.On("Begin", ctx).Return(nil).Once()
	txUoW.On("OrderRepository").Return(orderRepo)
	txUoW.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(snapshotUoW).Once()
	factory.On("Create").Return(txUoW).Once()

	handler := commands.NewCreatePaymentIntentCommandHandler(factory, gateway)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrPaymentIsFinal)
	assert.Equal(t, "pi_0", testOrder.PaymentIntentID())
	orderRepo.AssertNotCalled(t, "UpdatePayment", ctx, mock.Anything)
	txUoW.AssertNotCalled(t, "Commit", ctx)
}
