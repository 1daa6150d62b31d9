// Package queries contains read-only operations over the store. Queries
// bypass the domain aggregates and repositories entirely and read projections
// straight from the database, keeping the read path cheap and side-effect free.
package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetPendingOrdersQueryIsNotConstructed = errors.New(
	"GetPendingOrdersQuery must be created via NewGetPendingOrdersQuery constructor",
)

// GetPendingOrdersQuery retrieves the dispatch backlog: approved orders still
// waiting for a courier. Used for monitoring the matching pipeline.
type GetPendingOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetPendingOrdersQuery creates a query for the dispatch backlog.
func NewGetPendingOrdersQuery() GetPendingOrdersQuery {
	return GetPendingOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetPendingOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingOrdersQueryIsNotConstructed)
}

// GetPendingOrdersQueryResponse represents one order awaiting dispatch.
// DeliveryLat/DeliveryLng are nil when the order has no usable coordinates
// and is therefore skipped by the matcher.
type GetPendingOrdersQueryResponse struct {
	ID             kernel.UUID
	CustomerID     string
	AmountCentavos int64
	DeliveryLat    *float64
	DeliveryLng    *float64
	PaymentStatus  string
}
