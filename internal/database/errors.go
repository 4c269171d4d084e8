package database

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already taken")

	// ErrSlotTaken is returned when an active appointment already occupies
	// the (provider, hour) slot.
	ErrSlotTaken = errors.New("slot is not available")

	// ErrPastDate is returned for booking dates whose hour start is behind now.
	ErrPastDate = errors.New("past dates are not allowed")

	// ErrSelfBooking is returned when the requester and the provider are the
	// same user.
	ErrSelfBooking = errors.New("provider and user are the same")

	// ErrNotProvider is returned when the booking target is not flagged as a
	// provider.
	ErrNotProvider = errors.New("target user is not a provider")

	// ErrNotOwner is returned when a caller acts on an appointment that
	// belongs to another user.
	ErrNotOwner = errors.New("appointment belongs to another user")

	// ErrAlreadyCanceled is returned on re-cancellation attempts.
	ErrAlreadyCanceled = errors.New("appointment is already canceled")

	// ErrCancelWindow is returned when the two-hour cancellation window has
	// closed.
	ErrCancelWindow = errors.New("cancellation window has closed")
)
