package match_resource

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input data")
	ErrServiceNotFound = errors.New("service not found")
	ErrInternalService = errors.New("internal service error")
)
