package validate_booking

import (
	"context"

	validateBooking "github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
)

type ValidateBookingUseCase interface {
	Execute(ctx context.Context, req validateBooking.ValidateBookingRequest) (*validateBooking.ValidateBookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
