package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// AdminStatus represents the back-office approval state of an order.
// Orders enter dispatch only after approval.
type AdminStatus string

const (
	// AdminPending is the initial approval state of a new order.
	AdminPending AdminStatus = "pending"
	// AdminApproved marks the order as eligible for dispatch.
	AdminApproved AdminStatus = "approved"
	// AdminRejected marks the order as refused by back office.
	AdminRejected AdminStatus = "rejected"
)

// Validate checks if the AdminStatus value is one of the known states.
func (s AdminStatus) Validate() error {
	switch s {
	case AdminPending, AdminApproved, AdminRejected:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("adminStatus",
		fmt.Errorf("%q is not a valid admin status", string(s)))
}

// DispatchStatus represents the courier-matching state of an order.
//
// State transitions:
//
//	pending ──> assigned
//
// Assignment is one-way; an assigned order is never returned to pending
// and never reassigned.
type DispatchStatus string

const (
	// DispatchPending means the order is waiting for courier assignment.
	DispatchPending DispatchStatus = "pending"
	// DispatchAssigned means a courier has been matched to the order.
	DispatchAssigned DispatchStatus = "assigned"
)

// Validate checks if the DispatchStatus value is one of the known states.
func (s DispatchStatus) Validate() error {
	switch s {
	case DispatchPending, DispatchAssigned:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("dispatchStatus",
		fmt.Errorf("%q is not a valid dispatch status", string(s)))
}

// Assign performs the pending -> assigned transition.
// Returns an error if the order is not pending.
func (s DispatchStatus) Assign() (DispatchStatus, error) {
	if s != DispatchPending {
		return s, errs.NewValueIsInvalidErrorWithCause("dispatchStatus",
			fmt.Errorf("%q is not a valid status to assign from", string(s)))
	}
	return DispatchAssigned, nil
}

// PaymentStatus represents the payment lifecycle state of an order.
//
// State transitions:
//
//	unset ──> pending ──┬──> paid      (terminal)
//	                    ├──> failed
//	                    └──> expired
//
// Paid is terminal and monotonic: no transition out of it is permitted.
// Failed and expired orders may still become paid (a late successful
// notification wins over an earlier failure).
type PaymentStatus string

const (
	// PaymentUnset means no payment intent has been created yet.
	PaymentUnset PaymentStatus = ""
	// PaymentPending means a payment intent exists and awaits settlement.
	PaymentPending PaymentStatus = "pending"
	// PaymentPaid means the payment settled. Terminal.
	PaymentPaid PaymentStatus = "paid"
	// PaymentFailed means the provider reported a failed payment.
	PaymentFailed PaymentStatus = "failed"
	// PaymentExpired means the payment intent expired unsettled.
	PaymentExpired PaymentStatus = "expired"
)

// Validate checks if the PaymentStatus value is one of the known states.
func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentUnset, PaymentPending, PaymentPaid, PaymentFailed, PaymentExpired:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("paymentStatus",
		fmt.Errorf("%q is not a valid payment status", string(s)))
}

// IsTerminal reports whether the status permits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid
}

// Status is the derived aggregate lifecycle label exposed to readers.
type Status string

const (
	// StatusCreated is the label of a freshly created order.
	StatusCreated Status = "created"
	// StatusMatched is the label of an order matched to a courier.
	StatusMatched Status = "matched"
	// StatusPaid is the label of a settled order.
	StatusPaid Status = "paid"
)

// Validate checks if the Status value is one of the known labels.
func (s Status) Validate() error {
	switch s {
	case StatusCreated, StatusMatched, StatusPaid:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", string(s)))
}
