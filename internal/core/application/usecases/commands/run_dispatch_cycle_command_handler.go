package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
)

// RunDispatchCycleResult summarizes one completed dispatch cycle.
type RunDispatchCycleResult struct {
	// Scanned is the number of approved, dispatch-pending orders in the
	// cycle's snapshot.
	Scanned int
	// Assigned is the number of orders that committed a courier assignment
	// during this cycle.
	Assigned int
}

// RunDispatchCycleCommandHandler processes dispatch cycle commands.
//
// A cycle takes an untransacted snapshot of pending orders and available
// couriers, then walks the orders one at a time. For each order it picks the
// nearest in-radius courier from the snapshot and attempts the assignment in
// its own short transaction with guarded writes. The snapshot is advisory:
// the per-order transaction re-reads both aggregates and the guarded writes
// are what actually enforce exactly-once assignment, so a stale snapshot
// costs a skipped order, never a double assignment.
//
// The courier snapshot is deliberately not refreshed between orders. A
// courier claimed earlier in the cycle loses the in-transaction re-check for
// later orders, which then skip to the next cycle.
type RunDispatchCycleCommandHandler struct {
	uowFactory UoWFactory
	matcher    services.GeoMatcher
}

// NewRunDispatchCycleCommandHandler creates a handler for dispatch cycles.
// Requires a UoWFactory for coordinating transactional updates across repositories.
func NewRunDispatchCycleCommandHandler(uowFactory UoWFactory) RunDispatchCycleCommandHandler {
	return RunDispatchCycleCommandHandler{
		uowFactory: uowFactory,
		matcher:    services.NewGeoMatcher(),
	}
}

// Handle executes one dispatch cycle and returns its counters.
//
// Snapshot read failures abort the cycle with an error. Per-order conflicts
// (the order or courier changed under us) are expected under concurrency and
// are skipped silently; they surface only as Scanned > Assigned.
func (h RunDispatchCycleCommandHandler) Handle(
	ctx context.Context,
	cmd RunDispatchCycleCommand,
) (RunDispatchCycleResult, error) {
	if err := cmd.Validate(); err != nil {
		return RunDispatchCycleResult{}, err
	}

	snapshot := h.uowFactory.Create()

	orders, err := snapshot.OrderRepository().GetAllDispatchPending(ctx)
	if err != nil {
		return RunDispatchCycleResult{}, fmt.Errorf("scan pending orders: %w", err)
	}

	couriers, err := snapshot.CourierRepository().GetAllAvailable(ctx)
	if err != nil {
		return RunDispatchCycleResult{}, fmt.Errorf("scan available couriers: %w", err)
	}

	result := RunDispatchCycleResult{Scanned: len(orders)}

	for _, o := range orders {
		location := o.DeliveryLocation()
		if location == nil {
			continue
		}

		candidate, found, err := h.matcher.Nearest(*location, couriers, cmd.RadiusKm())
		if err != nil || !found {
			continue
		}

		if h.tryAssign(ctx, o.ID(), candidate.CourierID) {
			result.Assigned++
		}
	}

	return result, nil
}

// tryAssign runs the per-order assignment transaction. Both aggregates are
// re-read inside the transaction and both writes are guarded, so any
// concurrent mutation since the snapshot rolls the whole attempt back.
func (h RunDispatchCycleCommandHandler) tryAssign(
	ctx context.Context,
	orderID kernel.UUID,
	courierID kernel.UUID,
) bool {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return false
	}
	c, err := uow.CourierRepository().Get(ctx, courierID)
	if err != nil {
		return false
	}

	now := time.Now().UTC()

	// Re-check is the authority: the snapshot may be stale by now.
	if err := o.Assign(c.ID(), now); err != nil {
		return false
	}
	if err := c.MarkBusy(now); err != nil {
		return false
	}

	if err := uow.OrderRepository().UpdateAssignment(ctx, o); err != nil {
		return false
	}
	if err := uow.CourierRepository().ClaimBusy(ctx, c); err != nil {
		return false
	}

	return uow.Commit(ctx) == nil
}
