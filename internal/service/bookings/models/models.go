package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// GetBusinessBookingsRequest запрос на получение бронирований бизнеса
type GetBusinessBookingsRequest struct {
	UserID          int64      `json:"userId"`
	BusinessID      int64      `json:"businessId"`
	ResourceID      *int64     `json:"resourceId,omitempty"`
	ServiceID       *int64     `json:"serviceId,omitempty"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBusinessBookingsRequest) ToDomainFilter() (domain.BusinessBookingsFilter, error) {
	filter := domain.BusinessBookingsFilter{
		BusinessID:      r.BusinessID,
		ResourceID:      r.ResourceID,
		ServiceID:       r.ServiceID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	BusinessID      int64  `json:"businessId"`
	CustomerID      int64  `json:"customerId"`
	ServiceID       int64  `json:"serviceId"`
	ResourceID      *int64 `json:"resourceId,omitempty"`
	BookingDate     string `json:"bookingDate"` // "2026-03-15"
	StartTime       string `json:"startTime"`   // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	RelatedBookingID *int64 `json:"relatedBookingId,omitempty"`
	RescheduleCount  int    `json:"rescheduleCount,omitempty"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	Industry     string  `json:"industry,omitempty"`

	DepositAmount *float64 `json:"depositAmount,omitempty"`
	Notes         *string  `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// OperationResponse запись журнала операций
type OperationResponse struct {
	ID                int64                     `json:"id"`
	BookingID         int64                     `json:"bookingId"`
	Type              string                    `json:"type"`
	PerformedBy       int64                     `json:"performedBy"`
	PerformedByRole   string                    `json:"performedByRole"`
	PriorStatus       *string                   `json:"priorStatus,omitempty"`
	NewStatus         string                    `json:"newStatus"`
	Payload           domain.OperationPayload   `json:"payload,omitempty"`
	ConstraintsPassed bool                      `json:"constraintsPassed"`
	ConstraintResults []domain.ConstraintResult `json:"constraintResults,omitempty"`
	Violations        []domain.Violation        `json:"violations,omitempty"`
	FinancialImpact   float64                   `json:"financialImpact,omitempty"`
	ReferenceID       string                    `json:"referenceId,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
}

// StatusHistoryResponse запись истории статусов
type StatusHistoryResponse struct {
	FromStatus *string   `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingHistoryResponse полная история бронирования:
// журнал операций и производная история статусов
type BookingHistoryResponse struct {
	BookingID     int64                   `json:"bookingId"`
	Operations    []OperationResponse     `json:"operations"`
	StatusHistory []StatusHistoryResponse `json:"statusHistory"`
}

// Методы конвертации

// ToDomainBookingStatus валидирует и конвертирует строку статуса
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status, ok := domain.ParseBookingStatus(s)
	if !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:               b.ID,
		BusinessID:       b.BusinessID,
		CustomerID:       b.CustomerID,
		ServiceID:        b.ServiceID,
		ResourceID:       b.ResourceID,
		BookingDate:      b.BookingDate.Format(domain.DateFormat),
		StartTime:        b.StartTime.String(),
		DurationMinutes:  b.DurationMinutes,
		Status:           string(b.Status),
		RelatedBookingID: b.RelatedBookingID,
		RescheduleCount:  b.RescheduleCount,
		ServiceName:      b.ServiceName,
		ServicePrice:     b.ServicePrice,
		Industry:         b.Industry,
		DepositAmount:    b.DepositAmount,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}

	resp.CancellationReason = b.CancellationReason
	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{Bookings: make([]BookingResponse, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// FromDomainHistory собирает полную историю бронирования
func FromDomainHistory(bookingID int64, ops []*domain.BookingOperation, history []*domain.BookingStatusHistory) *BookingHistoryResponse {
	resp := &BookingHistoryResponse{
		BookingID:     bookingID,
		Operations:    make([]OperationResponse, 0, len(ops)),
		StatusHistory: make([]StatusHistoryResponse, 0, len(history)),
	}

	for _, op := range ops {
		entry := OperationResponse{
			ID:                op.ID,
			BookingID:         op.BookingID,
			Type:              string(op.Type),
			PerformedBy:       op.PerformedBy,
			PerformedByRole:   string(op.PerformedByRole),
			NewStatus:         string(op.NewStatus),
			Payload:           op.Payload,
			ConstraintsPassed: op.ConstraintsPassed,
			ConstraintResults: op.ConstraintResults,
			Violations:        op.Violations,
			FinancialImpact:   op.FinancialImpact,
			ReferenceID:       op.ReferenceID,
			CreatedAt:         op.CreatedAt,
		}
		if op.PriorStatus != nil {
			prior := string(*op.PriorStatus)
			entry.PriorStatus = &prior
		}
		resp.Operations = append(resp.Operations, entry)
	}

	for _, h := range history {
		entry := StatusHistoryResponse{
			ToStatus:  string(h.ToStatus),
			Reason:    h.Reason,
			CreatedAt: h.CreatedAt,
		}
		if h.FromStatus != nil {
			from := string(*h.FromStatus)
			entry.FromStatus = &from
		}
		resp.StatusHistory = append(resp.StatusHistory, entry)
	}

	return resp
}
