package validate_booking

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input data")
	ErrBusinessNotFound = errors.New("business not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrValidationFailed = errors.New("booking validation failed")
	ErrInternalService  = errors.New("internal service error")
)
