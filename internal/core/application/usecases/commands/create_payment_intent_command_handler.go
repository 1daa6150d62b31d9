package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/ports"
)

// paymentProviderName tags orders with the gateway that issued their intent.
const paymentProviderName = "paymongo"

// CreatePaymentIntentResult carries the provider references the customer
// needs to pay: the intent id and the rendered QR image.
type CreatePaymentIntentResult struct {
	IntentID   string
	QRImageURL string
}

// CreatePaymentIntentCommandHandler creates a provider payment intent for an
// order and records the intent reference on the aggregate.
//
// The gateway call happens outside any database transaction; only the
// resulting reference is written transactionally. A crash between the two
// leaves an orphaned provider intent, which is harmless: the next attempt
// simply creates a fresh one and the order tracks the latest.
type CreatePaymentIntentCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
}

// NewCreatePaymentIntentCommandHandler creates a handler backed by the given
// payment gateway.
func NewCreatePaymentIntentCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
) CreatePaymentIntentCommandHandler {
	return CreatePaymentIntentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
	}
}

// Handle creates the intent and attaches it to the order.
func (h CreatePaymentIntentCommandHandler) Handle(
	ctx context.Context,
	cmd CreatePaymentIntentCommand,
) (CreatePaymentIntentResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreatePaymentIntentResult{}, err
	}

	// Untransacted read to size the intent before talking to the provider.
	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return CreatePaymentIntentResult{}, err
	}

	intent, err := h.gateway.CreateQRIntent(ctx, o.ID(), o.AmountCentavos())
	if err != nil {
		return CreatePaymentIntentResult{}, fmt.Errorf("create provider intent: %w", err)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CreatePaymentIntentResult{}, fmt.Errorf("begin intent tx: %w", err)
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err = uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return CreatePaymentIntentResult{}, err
	}

	if err := o.AttachPaymentIntent(paymentProviderName, intent.IntentID, time.Now().UTC()); err != nil {
		return CreatePaymentIntentResult{}, err
	}

	if err := uow.OrderRepository().UpdatePayment(ctx, o); err != nil {
		return CreatePaymentIntentResult{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return CreatePaymentIntentResult{}, fmt.Errorf("commit intent tx: %w", err)
	}

	return CreatePaymentIntentResult{
		IntentID:   intent.IntentID,
		QRImageURL: intent.QRImageURL,
	}, nil
}
