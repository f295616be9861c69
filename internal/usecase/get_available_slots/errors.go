package get_available_slots

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input data")
	ErrBusinessNotFound = errors.New("business not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrInternalService  = errors.New("internal service error")
)
