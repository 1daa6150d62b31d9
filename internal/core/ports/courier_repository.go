// Package ports defines repository and gateway interfaces for the core.
// These interfaces establish contracts between the domain layer and
// infrastructure, enabling dependency inversion and testability.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/courier"
	"orderflow/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	// Returns errs.ErrObjectNotFound when no such courier exists.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves all couriers with riderStatus available and a
	// reported location, in a stable scan order. Couriers without a location
	// are ineligible and omitted.
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)

	// ClaimBusy persists the available -> busy transition for a claimed
	// courier. The write is predicated on the stored row still being
	// available; errs.ErrObjectChanged signals the courier was claimed by a
	// concurrent dispatch run.
	ClaimBusy(ctx context.Context, aggregate *courier.Courier) error
}
