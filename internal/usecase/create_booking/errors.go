package create_booking

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input data")
	ErrBusinessNotFound = errors.New("business not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrSlotNotAvailable = errors.New("slot is not available")
	ErrInternalService  = errors.New("internal service error")
)
