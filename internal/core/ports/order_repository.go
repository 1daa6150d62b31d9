package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Writes are split by field group to preserve the aggregate's ownership
// partitioning: UpdateAssignment touches dispatch fields only and
// UpdatePayment touches payment fields only. Both are guarded writes that
// re-evaluate the expected prior state at write time and report
// errs.ErrObjectChanged when another actor won the race.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns errs.ErrObjectNotFound when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByPaymentIntentID retrieves the order correlated to a provider
	// payment intent. Used as the fallback correlation path when a payment
	// event carries no direct order reference.
	GetByPaymentIntentID(ctx context.Context, intentID string) (*order.Order, error)

	// GetAllDispatchPending retrieves all orders that are approved by back
	// office and still pending courier assignment, in a stable scan order.
	GetAllDispatchPending(ctx context.Context) ([]*order.Order, error)

	// UpdateAssignment persists the dispatch fields of an assigned order.
	// The write is predicated on the stored row still being approved and
	// pending dispatch; errs.ErrObjectChanged signals a lost race.
	UpdateAssignment(ctx context.Context, aggregate *order.Order) error

	// UpdatePayment persists the payment fields of an order.
	// The write is predicated on the stored payment state not being terminal;
	// errs.ErrObjectChanged signals a concurrent settlement.
	UpdatePayment(ctx context.Context, aggregate *order.Order) error
}
