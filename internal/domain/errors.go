package domain

import "errors"

// Domain errors
var (
	// Slot errors
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotUnavailable     = errors.New("slot is no longer available")
	ErrSlotBooked          = errors.New("slot already has a booking")
	ErrSlotOverlap         = errors.New("slot overlaps an existing slot for this provider")
	ErrSlotOutsideWindow   = errors.New("slot date is outside the booking window")
	ErrInvalidTimeRange    = errors.New("slot end time must be after start time")
	ErrScheduleMismatch    = errors.New("requested schedule does not match the slot")
	ErrOwnershipMismatch   = errors.New("service does not belong to the slot provider")
	ErrServiceInactive     = errors.New("service is not active")

	// Booking errors
	ErrBookingNotFound     = errors.New("booking not found")
	ErrIllegalTransition   = errors.New("illegal booking status transition")
	ErrNotStarted          = errors.New("booking has no recorded service start")
	ErrCancelReasonMissing = errors.New("cancellation reason is required")

	// Validation errors
	ErrInvalidSlotID     = errors.New("invalid slot id")
	ErrInvalidBookingID  = errors.New("invalid booking id")
	ErrInvalidProviderID = errors.New("invalid provider id")
	ErrInvalidCustomerID = errors.New("invalid customer id")
	ErrInvalidServiceID  = errors.New("invalid service id")
	ErrInvalidActor      = errors.New("invalid actor identity")

	// Catalog errors
	ErrServiceNotFound = errors.New("service not found")

	// Infrastructure errors
	ErrLockTimeout = errors.New("timed out waiting for row lock")

	// Authorization errors
	ErrForbidden = errors.New("actor is not allowed to act on this entity")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrServiceNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidSlotID) ||
		errors.Is(err, ErrInvalidBookingID) ||
		errors.Is(err, ErrInvalidProviderID) ||
		errors.Is(err, ErrInvalidCustomerID) ||
		errors.Is(err, ErrInvalidServiceID) ||
		errors.Is(err, ErrInvalidActor) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrSlotOutsideWindow) ||
		errors.Is(err, ErrCancelReasonMissing)
}

// IsConflictError checks if the error is a business-rule conflict the caller
// can resolve by re-querying state
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSlotBooked) ||
		errors.Is(err, ErrSlotOverlap) ||
		errors.Is(err, ErrScheduleMismatch) ||
		errors.Is(err, ErrOwnershipMismatch) ||
		errors.Is(err, ErrServiceInactive)
}

// IsLifecycleError checks if the error is a booking lifecycle misuse
func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrNotStarted)
}

// IsRetryable checks if the error is transient and safe to retry
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
