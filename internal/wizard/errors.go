package wizard

import "errors"

var (
	ErrInvalidTransition = errors.New("action not allowed in current wizard state")

	ErrSubmitInFlight = errors.New("a submission is already in progress")

	ErrNoDateSelected = errors.New("no date selected")

	ErrUnknownSlot = errors.New("slot is not part of the offered schedule")

	ErrSlotUnavailable = errors.New("slot is already booked")

	ErrUnknownService = errors.New("service is not in the shop catalog")
)
