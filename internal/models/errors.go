package models

import "errors"

var (
	// ErrNotFound reports a missing order, partner or user.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition reports an order-status move the state machine
	// forbids, including re-assigning an already assigned order.
	ErrInvalidTransition = errors.New("invalid order state transition")

	// ErrNoPartnerAvailable reports that matching found zero eligible
	// candidates. The caller owns any retry policy.
	ErrNoPartnerAvailable = errors.New("no delivery partner available")

	// ErrPermissionDenied reports that the acting user does not own the
	// resource.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidRating reports a rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
