package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrCreatePaymentIntentCommandIsNotConstructed = errors.New(
	"CreatePaymentIntentCommand must be created via NewCreatePaymentIntentCommand constructor",
)

// CreatePaymentIntentCommand requests a provider payment intent for an order.
type CreatePaymentIntentCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewCreatePaymentIntentCommand creates a payment intent command for the
// given order.
func NewCreatePaymentIntentCommand(orderID kernel.UUID) (CreatePaymentIntentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreatePaymentIntentCommand{}, err
	}

	return CreatePaymentIntentCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the target order's identifier.
func (c *CreatePaymentIntentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Validate ensures the command was created through the constructor.
func (c *CreatePaymentIntentCommand) Validate() error {
	return c.guard.Validate(ErrCreatePaymentIntentCommandIsNotConstructed)
}
