package models

import "errors"

// Closed error taxonomy for registration outcomes. Repositories classify
// store-level faults into these; callers never see raw driver codes.
var (
	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrCapacityExceeded is returned when the event is full at commit time.
	ErrCapacityExceeded = errors.New("event is at capacity")

	// ErrDuplicateRegistration is returned when the same email is already
	// registered for the event.
	ErrDuplicateRegistration = errors.New("email already registered for this event")

	// ErrUnavailable is returned after the transient-conflict retry budget
	// is exhausted. The only retryable kind.
	ErrUnavailable = errors.New("registration temporarily unavailable")

	// ErrInvalidInput is returned by the boundary layer for malformed requests.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransientConflict marks a store conflict (serialization failure,
	// deadlock, lock timeout) that is safe to retry from the top of the
	// transaction. Internal to the registration packages; the service maps it
	// to ErrUnavailable once retries run out.
	ErrTransientConflict = errors.New("transient store conflict")
)
