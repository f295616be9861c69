package validate_booking

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// ValidateBookingRequest запрос на проверку бронирования без его создания
type ValidateBookingRequest struct {
	BusinessID      int64
	CustomerID      int64
	ServiceID       int64
	ResourceID      *int64
	BookingDate     string // YYYY-MM-DD
	StartTime       types.TimeString
	DurationMinutes *int
}

// ValidateBookingResponse результат проверки: вердикт и полный список проверок
type ValidateBookingResponse struct {
	Valid      bool
	Results    []domain.ConstraintResult
	Violations []domain.Violation
	Warnings   []domain.Violation
}

// Facts собранные факты о запросе, на которых вычисляются ограничения.
// Сбор фактов отделён от вычисления, чтобы правила оставались чистыми функциями.
type Facts struct {
	Now                     int64 // unix, момент проверки
	StartsAt                int64 // unix, начало бронирования
	DurationMinutes         int
	Industry                string
	CustomerBookingsSameDay int
	RosterSize              int // Бизнес без ресурсов бронируется целиком, с единичной ёмкостью
	QualifiedResourceCount  int
	ConflictCount           int
	AllowDoubleBooking      bool
}
