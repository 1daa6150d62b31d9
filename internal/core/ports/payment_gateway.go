package ports

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
)

// ErrGatewayUnavailable indicates that the payment provider could not be
// reached or answered with a server-side failure. Callers may retry.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PaymentIntent is the provider's handle for a created payment.
type PaymentIntent struct {
	IntentID        string
	PaymentMethodID string
	QRImageURL      string
}

// PaymentGateway is the outbound contract to the payment provider.
// The provider's order-creation and QR-rendering flow is a black box; the
// core only consumes the returned identifiers.
type PaymentGateway interface {
	// CreateQRIntent creates a payment intent with an attached QR payment
	// method for the given order and amount in currency minor units.
	CreateQRIntent(ctx context.Context, orderID kernel.UUID, amountCentavos int64) (PaymentIntent, error)
}
