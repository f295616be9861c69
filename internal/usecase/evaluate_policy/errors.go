package evaluate_policy

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input data")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrPolicyMisconfigured = errors.New("policy misconfigured")
	ErrInternalService     = errors.New("internal service error")
)
