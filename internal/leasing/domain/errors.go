package leasing

import "errors"

var (
	// ErrLeaseNotFound is returned when a referenced lease does not exist.
	ErrLeaseNotFound = errors.New("lease: not found")
	// ErrLeaseNotPending is returned when accept/reject/cancel hits a non-PENDING lease.
	ErrLeaseNotPending = errors.New("lease: not pending")
	// ErrLeaseNotActive is returned when terminate/complete hits a non-ACTIVE lease.
	ErrLeaseNotActive = errors.New("lease: not active")
	// ErrLeaseActorMismatch is returned when the acting user does not own the lease side.
	ErrLeaseActorMismatch = errors.New("lease: actor mismatch")

	// ErrPaymentNotFound is returned when a referenced payment does not exist.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrPaymentAlreadyPaid is returned when settling an already settled payment.
	ErrPaymentAlreadyPaid = errors.New("payment: already paid")

	// ErrMissingStartDate is returned when schedule terms lack a start date.
	ErrMissingStartDate = errors.New("schedule: missing start date")
	// ErrInvalidRentAmount is returned when rent amount is zero or negative.
	ErrInvalidRentAmount = errors.New("schedule: rent amount must be positive")
	// ErrInvalidDueDay is returned when the due day is outside 1..31.
	ErrInvalidDueDay = errors.New("schedule: due day out of range")
	// ErrEndBeforeStart is returned when the end date precedes the start date.
	ErrEndBeforeStart = errors.New("schedule: end date before start date")

	// ErrInvalidSettlement is returned when settlement details are incomplete.
	ErrInvalidSettlement = errors.New("payment: invalid settlement details")
)
