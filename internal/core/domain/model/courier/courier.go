package courier

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierNotAvailable is returned when claiming a courier who is not available.
	ErrCourierNotAvailable = errors.New("courier is not available")
)

// RiderStatus represents the availability state of a courier.
//
// State transitions:
//
//	offline ──> available ──> busy ──> available
//
// Availability reporting (offline/available and location updates) comes from
// an external collaborator; the dispatch orchestrator only performs the
// available -> busy transition when it claims a courier.
type RiderStatus string

const (
	// RiderOffline means the courier is not accepting work.
	RiderOffline RiderStatus = "offline"
	// RiderAvailable means the courier can be claimed for an order.
	RiderAvailable RiderStatus = "available"
	// RiderBusy means the courier is on an active delivery.
	RiderBusy RiderStatus = "busy"
)

// Validate checks if the RiderStatus value is one of the known states.
func (s RiderStatus) Validate() error {
	switch s {
	case RiderOffline, RiderAvailable, RiderBusy:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("riderStatus",
		fmt.Errorf("%q is not a valid rider status", string(s)))
}

// Courier represents a delivery courier. It is an aggregate root managing
// courier identity, availability, and last reported position.
//
// Business rules:
//   - Courier must have a valid UUID and a non-empty name
//   - Location is nil until the courier's first location report; couriers
//     without a location are ineligible for dispatch, not invalid
//   - Only an available courier can be claimed for an order
type Courier struct {
	id       kernel.UUID
	name     string
	status   RiderStatus
	location *kernel.GeoPoint

	// updatedAt is the time of the last status or location change
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewCourier creates a new Courier with the specified identity.
// New couriers start offline with no reported location.
func NewCourier(id kernel.UUID, name string) (*Courier, error) {
	c := &Courier{
		status:    RiderOffline,
		updatedAt: time.Now().UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
func RestoreCourier(
	id kernel.UUID,
	name string,
	status RiderStatus,
	location *kernel.GeoPoint,
	updatedAt time.Time,
) (*Courier, error) {
	c := &Courier{
		status:    status,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if location != nil {
		if err := location.Validate(); err != nil {
			return nil, err
		}
		c.location = location
	}

	return c, nil
}

// Validate checks if the Courier was properly constructed using a constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's human-readable name.
func (c *Courier) Name() string {
	return c.name
}

// Status returns the courier's availability state.
func (c *Courier) Status() RiderStatus {
	return c.status
}

// Location returns the last reported position, or nil before the first report.
func (c *Courier) Location() *kernel.GeoPoint {
	return c.location
}

// UpdatedAt returns the time of the last status or location change.
func (c *Courier) UpdatedAt() time.Time {
	return c.updatedAt
}

// IsMatchable reports whether the courier can be offered to the geo matcher:
// available with a known position.
func (c *Courier) IsMatchable() bool {
	return c.status == RiderAvailable && c.location != nil
}

// MarkBusy claims the courier for a delivery. Only available couriers can be
// claimed; claiming an already busy or offline courier is a conflict, which
// the dispatch orchestrator treats as losing the race for this courier.
func (c *Courier) MarkBusy(now time.Time) error {
	if c.status != RiderAvailable {
		return ErrCourierNotAvailable
	}
	c.status = RiderBusy
	c.updatedAt = now.UTC()
	return nil
}

// MarkAvailable releases the courier back into the dispatch pool.
func (c *Courier) MarkAvailable(now time.Time) error {
	if err := c.status.Validate(); err != nil {
		return err
	}
	c.status = RiderAvailable
	c.updatedAt = now.UTC()
	return nil
}

// ReportLocation records a position report from the courier's device.
func (c *Courier) ReportLocation(location kernel.GeoPoint, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = &location
	c.updatedAt = now.UTC()
	return nil
}

// setID validates and sets the courier's unique identifier.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

// setName validates and sets the courier's name.
func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}
