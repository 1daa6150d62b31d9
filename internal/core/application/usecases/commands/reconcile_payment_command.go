package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrReconcilePaymentCommandIsNotConstructed = errors.New(
	"ReconcilePaymentCommand must be created via NewReconcilePaymentCommand constructor",
)

// ReconcilePaymentCommand carries one raw provider notification exactly as it
// arrived on the wire. The body bytes must be untouched: the signature covers
// the exact raw payload, so any re-serialization would break verification.
type ReconcilePaymentCommand struct {
	rawBody         []byte
	signatureHeader string
	guard           guard.ConstructorGuard
}

// NewReconcilePaymentCommand creates a reconcile command from the raw webhook
// request body and its signature header.
func NewReconcilePaymentCommand(rawBody []byte, signatureHeader string) (ReconcilePaymentCommand, error) {
	if len(rawBody) == 0 {
		return ReconcilePaymentCommand{}, errs.NewValueIsRequiredError("rawBody")
	}

	return ReconcilePaymentCommand{
		rawBody:         rawBody,
		signatureHeader: signatureHeader,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// RawBody returns the unmodified request body bytes.
func (c *ReconcilePaymentCommand) RawBody() []byte {
	return c.rawBody
}

// SignatureHeader returns the provider's signature header value.
func (c *ReconcilePaymentCommand) SignatureHeader() string {
	return c.signatureHeader
}

// Validate ensures the command was created through the constructor.
func (c *ReconcilePaymentCommand) Validate() error {
	return c.guard.Validate(ErrReconcilePaymentCommandIsNotConstructed)
}
