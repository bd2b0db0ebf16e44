package domain

import "errors"

// Sentinel errors shared by the services and the HTTP layer.
var (
	// ErrNotFound is returned when a referenced account, event or registration does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission is returned when the actor lacks rights for the target mutation.
	ErrPermission = errors.New("permission denied")
	// ErrDuplicateEmail is returned by signup when the email is already taken.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrSeatsExhausted is returned when registering for an event with no available seats.
	ErrSeatsExhausted = errors.New("no seats available")
	// ErrAlreadyRegistered is returned when the user already holds a registration for the event.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrEventCompleted is returned when registering for an event that has already taken place.
	ErrEventCompleted = errors.New("event already completed")
	// ErrNotEligible is returned when a certificate is requested before the event is completed.
	ErrNotEligible = errors.New("not eligible for a certificate")
	// ErrCorruptState is returned when a stored collection cannot be decoded.
	ErrCorruptState = errors.New("corrupt stored state")
	// ErrInvalidInput is returned when request fields fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPaymentFailed is returned when the payment collaborator declines the fee.
	ErrPaymentFailed = errors.New("payment failed")
)
