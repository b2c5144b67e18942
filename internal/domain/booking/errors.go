package booking

import "errors"

var (
	// ErrInvalidTimeFormat is returned for times that are not 24h "HH:mm".
	// The text is part of the API contract with the storefront.
	ErrInvalidTimeFormat = errors.New("Invalid time format, expected HH:mm")

	// ErrSlotUnavailable is returned when the requested slot is taken.
	// The text is part of the API contract with the storefront.
	ErrSlotUnavailable = errors.New("Selected time slot is no longer available")

	// ErrInvalidDuration is returned for non-positive session lengths.
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")

	// ErrInvalidDate is returned for dates that are not "YYYY-MM-DD".
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrNotFound is returned when no booking matches the lookup.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned for disallowed status changes.
	ErrInvalidTransition = errors.New("invalid status transition")
)
