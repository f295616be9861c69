package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// CreateBookingRequest запрос на создание бронирования
type CreateBookingRequest struct {
	BusinessID      int64
	CustomerID      int64
	ServiceID       int64
	ResourceID      *int64 // Жёсткий выбор ресурса
	BookingDate     string // YYYY-MM-DD
	StartTime       types.TimeString
	DurationMinutes *int
	Preferences     map[string]string // Мягкие предпочтения по ресурсу
	Notes           *string
}

// CreateBookingResponse созданное бронирование
type CreateBookingResponse struct {
	ID              int64
	BusinessID      int64
	CustomerID      int64
	ServiceID       int64
	ResourceID      *int64
	BookingDate     string
	StartTime       types.TimeString
	DurationMinutes int
	Status          string
	ServiceName     string
	ServicePrice    float64
	DepositAmount   *float64
	Notes           *string
	Warnings        []domain.Violation
	CreatedAt       time.Time
}

func toResponse(booking *domain.Booking, warnings []domain.Violation) *CreateBookingResponse {
	return &CreateBookingResponse{
		ID:              booking.ID,
		BusinessID:      booking.BusinessID,
		CustomerID:      booking.CustomerID,
		ServiceID:       booking.ServiceID,
		ResourceID:      booking.ResourceID,
		BookingDate:     booking.BookingDate.Format(domain.DateFormat),
		StartTime:       booking.StartTime,
		DurationMinutes: booking.DurationMinutes,
		Status:          string(booking.Status),
		ServiceName:     booking.ServiceName,
		ServicePrice:    booking.ServicePrice,
		DepositAmount:   booking.DepositAmount,
		Notes:           booking.Notes,
		Warnings:        warnings,
		CreatedAt:       booking.CreatedAt,
	}
}
