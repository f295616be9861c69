package transition_booking

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// TransitionBookingRequest запрос на операцию жизненного цикла
type TransitionBookingRequest struct {
	BookingID int64
	Operation string // confirm / cancel / complete / no_show / reschedule / refund / charge / reminder_sent

	ActorID   int64 // Из заголовка аутентификации
	ActorRole string

	Reason *string
	// Аварийное освобождение от штрафа при отмене
	Emergency bool

	// Поля переноса
	NewDate      *string // YYYY-MM-DD
	NewStartTime *types.TimeString
	Preferences  map[string]string

	// Поля финансовых операций
	Amount *float64
}

// TransitionBookingResponse результат операции
type TransitionBookingResponse struct {
	BookingID  int64
	Operation  string
	FromStatus string
	ToStatus   string
	Decision   *domain.PolicyDecision
	// Заполняется при переносе: ID нового бронирования
	NewBookingID *int64
	Warnings     []domain.Violation
}
