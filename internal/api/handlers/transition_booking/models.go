package transition_booking

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	transitionBooking "github.com/m04kA/SMC-ReservationEngine/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// TransitionBookingRequest HTTP request model
type TransitionBookingRequest struct {
	Operation string  `json:"operation"` // confirm / cancel / complete / no_show / reschedule / refund / charge / reminder_sent
	Reason    *string `json:"reason,omitempty"`
	Emergency bool    `json:"emergency,omitempty"`

	// Поля переноса
	NewDate      *string           `json:"newDate,omitempty"` // "2026-03-15"
	NewStartTime *string           `json:"newStartTime,omitempty"`
	Preferences  map[string]string `json:"preferences,omitempty"`

	// Поля финансовых операций
	Amount *float64 `json:"amount,omitempty"`
}

// TransitionBookingResponse HTTP response model
type TransitionBookingResponse struct {
	BookingID    int64                  `json:"bookingId"`
	Operation    string                 `json:"operation"`
	FromStatus   string                 `json:"fromStatus"`
	ToStatus     string                 `json:"toStatus"`
	Decision     *domain.PolicyDecision `json:"decision,omitempty"`
	NewBookingID *int64                 `json:"newBookingId,omitempty"`
	Warnings     []domain.Violation     `json:"warnings,omitempty"`
}

// PolicyBlockedResponse ответ 409 при запрете операции политикой
type PolicyBlockedResponse struct {
	Error    string                `json:"error"`
	Decision domain.PolicyDecision `json:"decision"`
}

// ValidationFailedResponse ответ 422 с перечнем нарушенных ограничений
type ValidationFailedResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *TransitionBookingRequest) ToUseCaseRequest(bookingID, actorID int64, actorRole string) (transitionBooking.TransitionBookingRequest, error) {
	var newStartTime *types.TimeString
	if r.NewStartTime != nil {
		ts, err := types.NewTimeStringFromString(*r.NewStartTime)
		if err != nil {
			return transitionBooking.TransitionBookingRequest{}, err
		}
		newStartTime = &ts
	}

	return transitionBooking.TransitionBookingRequest{
		BookingID:    bookingID,
		Operation:    r.Operation,
		ActorID:      actorID,
		ActorRole:    actorRole,
		Reason:       r.Reason,
		Emergency:    r.Emergency,
		NewDate:      r.NewDate,
		NewStartTime: newStartTime,
		Preferences:  r.Preferences,
		Amount:       r.Amount,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *transitionBooking.TransitionBookingResponse) *TransitionBookingResponse {
	return &TransitionBookingResponse{
		BookingID:    resp.BookingID,
		Operation:    resp.Operation,
		FromStatus:   resp.FromStatus,
		ToStatus:     resp.ToStatus,
		Decision:     resp.Decision,
		NewBookingID: resp.NewBookingID,
		Warnings:     resp.Warnings,
	}
}
