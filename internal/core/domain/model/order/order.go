package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderNotDispatchable is returned when attempting to assign a courier to
	// an order that is not approved or no longer pending dispatch.
	ErrOrderNotDispatchable = errors.New("order is not approved and pending dispatch")

	// ErrPaymentIsFinal is returned when attempting a payment transition on an
	// order whose payment already settled. Paid is terminal and monotonic.
	ErrPaymentIsFinal = errors.New("payment status is final")
)

// Order is the central aggregate of the service. It carries three loosely
// coupled field groups mutated by different actors:
//
//   - commerce fields, set at creation (customer, amount, delivery location)
//   - dispatch fields, mutated only by the dispatch orchestrator
//   - payment fields, mutated only by the payment reconciler and the
//     payment-intent creation step
//
// The field groups are disjoint so the dispatch and payment flows never need
// mutual exclusion against each other, only against concurrent runs of their
// own kind.
type Order struct {
	id         kernel.UUID
	customerID string

	// amountCentavos is the order total in currency minor units (must be positive)
	amountCentavos int64

	// deliveryLocation is nil until the customer supplies usable coordinates;
	// orders without a location are ineligible for dispatch, not invalid
	deliveryLocation *kernel.GeoPoint

	adminStatus    AdminStatus
	dispatchStatus DispatchStatus
	status         Status
	courierID      *kernel.UUID

	paymentStatus   PaymentStatus
	paymentProvider string
	paymentIntentID string
	paymentRef      string

	updatedAt time.Time
	paidAt    *time.Time

	isConstructed bool
}

// NewOrder creates a new Order with validation. The order starts with
// adminStatus pending, dispatchStatus pending, an unset payment state,
// and the "created" lifecycle label.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - customerID: customer reference (must be non-empty)
//   - amountCentavos: order total in minor units (must be positive)
//   - deliveryLocation: delivery coordinates, may be nil when unknown
func NewOrder(
	id kernel.UUID,
	customerID string,
	amountCentavos int64,
	deliveryLocation *kernel.GeoPoint,
) (*Order, error) {
	o := &Order{
		adminStatus:    AdminPending,
		dispatchStatus: DispatchPending,
		status:         StatusCreated,
		paymentStatus:  PaymentUnset,
		updatedAt:      time.Now().UTC(),
		isConstructed:  true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setAmount(amountCentavos),
		o.setDeliveryLocation(deliveryLocation),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage.
// Unlike NewOrder it accepts the full persisted state and validates the
// status fields rather than resetting them.
func RestoreOrder(
	id kernel.UUID,
	customerID string,
	amountCentavos int64,
	deliveryLocation *kernel.GeoPoint,
	adminStatus AdminStatus,
	dispatchStatus DispatchStatus,
	status Status,
	courierID *kernel.UUID,
	paymentStatus PaymentStatus,
	paymentProvider string,
	paymentIntentID string,
	paymentRef string,
	updatedAt time.Time,
	paidAt *time.Time,
) (*Order, error) {
	o := &Order{
		adminStatus:     adminStatus,
		dispatchStatus:  dispatchStatus,
		status:          status,
		paymentStatus:   paymentStatus,
		paymentProvider: paymentProvider,
		paymentIntentID: paymentIntentID,
		paymentRef:      paymentRef,
		updatedAt:       updatedAt,
		paidAt:          paidAt,
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setAmount(amountCentavos),
		o.setDeliveryLocation(deliveryLocation),
		adminStatus.Validate(),
		dispatchStatus.Validate(),
		status.Validate(),
		paymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		o.courierID = courierID
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed through a factory.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the customer reference.
func (o *Order) CustomerID() string {
	return o.customerID
}

// AmountCentavos returns the order total in currency minor units.
func (o *Order) AmountCentavos() int64 {
	return o.amountCentavos
}

// DeliveryLocation returns the delivery coordinates, or nil when the order
// has none. Orders without a location are skipped by dispatch.
func (o *Order) DeliveryLocation() *kernel.GeoPoint {
	return o.deliveryLocation
}

// AdminStatus returns the back-office approval state.
func (o *Order) AdminStatus() AdminStatus {
	return o.adminStatus
}

// DispatchStatus returns the courier-matching state.
func (o *Order) DispatchStatus() DispatchStatus {
	return o.dispatchStatus
}

// Status returns the derived aggregate lifecycle label.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's ID, or nil if unassigned.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// PaymentStatus returns the payment lifecycle state.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// PaymentProvider returns the payment provider identifier, if any.
func (o *Order) PaymentProvider() string {
	return o.paymentProvider
}

// PaymentIntentID returns the provider-assigned intent id, if any.
func (o *Order) PaymentIntentID() string {
	return o.paymentIntentID
}

// PaymentRef returns the provider-assigned payment reference, if any.
func (o *Order) PaymentRef() string {
	return o.paymentRef
}

// UpdatedAt returns the last mutation timestamp.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// PaidAt returns the settlement timestamp, or nil when unpaid.
func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

// IsDispatchable reports whether the order is approved and still pending
// courier assignment with usable delivery coordinates.
func (o *Order) IsDispatchable() bool {
	return o.adminStatus == AdminApproved &&
		o.dispatchStatus == DispatchPending &&
		o.deliveryLocation != nil
}

// Approve moves the order's admin status from pending to approved,
// making it eligible for dispatch.
func (o *Order) Approve() error {
	if o.adminStatus != AdminPending {
		return errs.NewValueIsInvalidErrorWithCause("adminStatus",
			fmt.Errorf("%q cannot be approved", string(o.adminStatus)))
	}
	o.adminStatus = AdminApproved
	o.touch(time.Now().UTC())
	return nil
}

// Assign matches the order to a courier. It enforces the dispatch
// preconditions: the order must be approved and pending dispatch.
// On success the dispatch status becomes assigned, the lifecycle label
// becomes "matched", and the courier reference is set.
//
// Assign mutates only dispatch fields; payment fields are untouched.
func (o *Order) Assign(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if o.adminStatus != AdminApproved {
		return ErrOrderNotDispatchable
	}

	newStatus, err := o.dispatchStatus.Assign()
	if err != nil {
		return ErrOrderNotDispatchable
	}

	o.dispatchStatus = newStatus
	o.status = StatusMatched
	o.courierID = &courierID
	o.touch(now)
	return nil
}

// AttachPaymentIntent records the provider-created payment intent and moves
// the payment state to pending. Rejected when payment already settled.
func (o *Order) AttachPaymentIntent(provider string, intentID string, now time.Time) error {
	if provider == "" {
		return errs.NewValueIsRequiredError("paymentProvider")
	}
	if intentID == "" {
		return errs.NewValueIsRequiredError("paymentIntentId")
	}
	if o.paymentStatus.IsTerminal() {
		return ErrPaymentIsFinal
	}

	o.paymentStatus = PaymentPending
	o.paymentProvider = provider
	o.paymentIntentID = intentID
	o.touch(now)
	return nil
}

// MarkPaid settles the order's payment exactly once. The payment status and
// the lifecycle label both become "paid" and paidAt is stamped. Returns
// ErrPaymentIsFinal when the order is already paid, so replayed provider
// notifications become no-ops.
func (o *Order) MarkPaid(paymentRef string, now time.Time) error {
	if o.paymentStatus.IsTerminal() {
		return ErrPaymentIsFinal
	}

	o.paymentStatus = PaymentPaid
	o.status = StatusPaid
	o.paymentRef = paymentRef
	paidAt := now
	o.paidAt = &paidAt
	o.touch(now)
	return nil
}

// MarkPaymentFailed records a failed payment notification.
// Rejected when payment already settled.
func (o *Order) MarkPaymentFailed(now time.Time) error {
	if o.paymentStatus.IsTerminal() {
		return ErrPaymentIsFinal
	}

	o.paymentStatus = PaymentFailed
	o.touch(now)
	return nil
}

// MarkPaymentExpired records an expired payment intent.
// Rejected when payment already settled.
func (o *Order) MarkPaymentExpired(now time.Time) error {
	if o.paymentStatus.IsTerminal() {
		return ErrPaymentIsFinal
	}

	o.paymentStatus = PaymentExpired
	o.touch(now)
	return nil
}

func (o *Order) touch(now time.Time) {
	o.updatedAt = now.UTC()
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setCustomerID validates and sets the customer reference.
func (o *Order) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}
	o.customerID = customerID
	return nil
}

// setAmount validates and sets the order total.
// The amount must be positive after normalization to minor units.
func (o *Order) setAmount(amountCentavos int64) error {
	if amountCentavos <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d is not greater than 0", amountCentavos))
	}
	o.amountCentavos = amountCentavos
	return nil
}

// setDeliveryLocation validates and sets the delivery coordinates when present.
func (o *Order) setDeliveryLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	o.deliveryLocation = location
	return nil
}
