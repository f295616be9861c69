package validate_booking

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	validateBooking "github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// ValidateBookingRequest HTTP request model
type ValidateBookingRequest struct {
	BusinessID      int64  `json:"businessId"`
	ServiceID       int64  `json:"serviceId"`
	ResourceID      *int64 `json:"resourceId,omitempty"`
	BookingDate     string `json:"bookingDate"` // "2026-03-15"
	StartTime       string `json:"startTime"`   // "10:00"
	DurationMinutes *int   `json:"durationMinutes,omitempty"`
}

// ValidateBookingResponse HTTP response model: вердикт и полный
// список выполненных проверок
type ValidateBookingResponse struct {
	Valid      bool                      `json:"valid"`
	Results    []domain.ConstraintResult `json:"results"`
	Violations []domain.Violation        `json:"violations,omitempty"`
	Warnings   []domain.Violation        `json:"warnings,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ValidateBookingRequest) ToUseCaseRequest(customerID int64) (validateBooking.ValidateBookingRequest, error) {
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return validateBooking.ValidateBookingRequest{}, err
	}

	return validateBooking.ValidateBookingRequest{
		BusinessID:      r.BusinessID,
		CustomerID:      customerID,
		ServiceID:       r.ServiceID,
		ResourceID:      r.ResourceID,
		BookingDate:     r.BookingDate,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *validateBooking.ValidateBookingResponse) *ValidateBookingResponse {
	return &ValidateBookingResponse{
		Valid:      resp.Valid,
		Results:    resp.Results,
		Violations: resp.Violations,
		Warnings:   resp.Warnings,
	}
}
