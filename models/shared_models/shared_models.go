package shared_models

// PaymentStatus is the reservation payment lifecycle state. A typed
// string keeps the database representation readable while every
// consumption site switches over the known constants.
type PaymentStatus string

const (
	StatusPendingCheckout      PaymentStatus = "pending_checkout"
	StatusSucceeded            PaymentStatus = "succeeded"
	StatusCancelled            PaymentStatus = "cancelled"
	StatusFailedStripeRedirect PaymentStatus = "failed_stripe_redirect"
	StatusFailedUnexpected     PaymentStatus = "failed_unexpected"
	StatusUnknown              PaymentStatus = "unknown"
)

// Return URL status flags as the checkout gateway sends them back.
const (
	ReturnFlagSuccess   = "success"
	ReturnFlagCancelled = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPendingCheckout, StatusSucceeded, StatusCancelled,
		StatusFailedStripeRedirect, StatusFailedUnexpected, StatusUnknown:
		return true
	}
	return false
}

// Terminal reports whether s closes the reservation attempt. Every
// status except pending_checkout is terminal for this subsystem.
func (s PaymentStatus) Terminal() bool {
	return s.Valid() && s != StatusPendingCheckout
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Statuses only move forward: pending_checkout may reach any terminal
// status, a terminal status may only be re-written with itself (the
// idempotent repeat), and nothing ever returns to pending_checkout.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return s == StatusPendingCheckout && next != StatusPendingCheckout
}

// ParseReturnStatus maps the status flag carried on the checkout return
// URL to a target status. Anything unrecognized maps to StatusUnknown
// so a new gateway outcome is still recorded instead of silently
// dropped.
func ParseReturnStatus(flag string) PaymentStatus {
	switch flag {
	case ReturnFlagSuccess:
		return StatusSucceeded
	case ReturnFlagCancelled:
		return StatusCancelled
	default:
		return StatusUnknown
	}
}
