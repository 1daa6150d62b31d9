package commands

import (
	"errors"
	"math"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRunDispatchCycleCommandIsNotConstructed = errors.New(
	"RunDispatchCycleCommand must be created via NewRunDispatchCycleCommand constructor",
)

// RunDispatchCycleCommand triggers one dispatch cycle: scan pending orders,
// rank available couriers by distance, and attempt one guarded assignment
// per order within the configured radius.
type RunDispatchCycleCommand struct {
	radiusKm float64
	guard    guard.ConstructorGuard
}

// NewRunDispatchCycleCommand creates a dispatch cycle command for the given
// matching radius in kilometers. The radius must be a positive finite number.
func NewRunDispatchCycleCommand(radiusKm float64) (RunDispatchCycleCommand, error) {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return RunDispatchCycleCommand{}, errs.NewValueIsInvalidError("radiusKm")
	}

	return RunDispatchCycleCommand{
		radiusKm: radiusKm,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// RadiusKm returns the matching radius in kilometers.
func (c *RunDispatchCycleCommand) RadiusKm() float64 {
	return c.radiusKm
}

// Validate ensures the command was created through the constructor.
func (c *RunDispatchCycleCommand) Validate() error {
	return c.guard.Validate(ErrRunDispatchCycleCommandIsNotConstructed)
}
