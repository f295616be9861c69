package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	createBooking "github.com/m04kA/SMC-ReservationEngine/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BusinessID      int64             `json:"businessId"`
	ServiceID       int64             `json:"serviceId"`
	ResourceID      *int64            `json:"resourceId,omitempty"`
	BookingDate     string            `json:"bookingDate"` // "2026-03-15"
	StartTime       string            `json:"startTime"`   // "10:00"
	DurationMinutes *int              `json:"durationMinutes,omitempty"`
	Preferences     map[string]string `json:"preferences,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64              `json:"id"`
	BusinessID      int64              `json:"businessId"`
	CustomerID      int64              `json:"customerId"`
	ServiceID       int64              `json:"serviceId"`
	ResourceID      *int64             `json:"resourceId,omitempty"`
	BookingDate     string             `json:"bookingDate"`
	StartTime       string             `json:"startTime"`
	DurationMinutes int                `json:"durationMinutes"`
	Status          string             `json:"status"`
	ServiceName     string             `json:"serviceName"`
	ServicePrice    float64            `json:"servicePrice"`
	DepositAmount   *float64           `json:"depositAmount,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	Warnings        []domain.Violation `json:"warnings,omitempty"`
	CreatedAt       string             `json:"createdAt"`
}

// ValidationFailedResponse ответ 422 с перечнем нарушенных ограничений
type ValidationFailedResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (createBooking.CreateBookingRequest, error) {
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return createBooking.CreateBookingRequest{}, err
	}

	return createBooking.CreateBookingRequest{
		BusinessID:      r.BusinessID,
		CustomerID:      customerID,
		ServiceID:       r.ServiceID,
		ResourceID:      r.ResourceID,
		BookingDate:     r.BookingDate,
		StartTime:       startTime,
		DurationMinutes: r.DurationMinutes,
		Preferences:     r.Preferences,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.CreateBookingResponse) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		BusinessID:      resp.BusinessID,
		CustomerID:      resp.CustomerID,
		ServiceID:       resp.ServiceID,
		ResourceID:      resp.ResourceID,
		BookingDate:     resp.BookingDate,
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		DepositAmount:   resp.DepositAmount,
		Notes:           resp.Notes,
		Warnings:        resp.Warnings,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
