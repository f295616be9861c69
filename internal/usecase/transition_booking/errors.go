package transition_booking

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input data")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrForbidden         = errors.New("operation is not allowed for this actor")
	ErrSlotNotAvailable  = errors.New("slot is not available")
	ErrInternalService   = errors.New("internal service error")
)
