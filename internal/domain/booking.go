package domain

import (
	"time"

	"github.com/m04kA/SMC-ReservationEngine/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusRequested   BookingStatus = "requested"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCompleted   BookingStatus = "completed"
	StatusCancelled   BookingStatus = "cancelled"
	StatusNoShow      BookingStatus = "no_show"
	StatusRescheduled BookingStatus = "rescheduled"
)

// allowedTransitions таблица переходов статусов
// Перенос (rescheduled) - терминальный статус старого бронирования,
// новое бронирование создаётся отдельной операцией в паре с переносом
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusRequested: {StatusConfirmed, StatusCancelled, StatusRescheduled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled},
}

// CanTransitionTo проверяет допустимость перехода по таблице статусов
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal проверяет, что статус терминальный
func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// ParseBookingStatus валидирует и конвертирует строку в BookingStatus
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch status := BookingStatus(s); status {
	case StatusRequested, StatusConfirmed, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled:
		return status, true
	default:
		return "", false
	}
}

// Booking represents a reservation in the system
// Статус меняется только через операции жизненного цикла; запись никогда
// не удаляется, только переводится в терминальный статус
type Booking struct {
	ID              int64
	BusinessID      int64
	CustomerID      int64
	ServiceID       int64
	ResourceID      *int64 // nil до назначения ресурса
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus

	// Связь переноса: новое бронирование ссылается на старое
	RelatedBookingID *int64
	RescheduleCount  int

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Industry     string

	DepositAmount *float64
	Notes         *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusRequested || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can be cancelled without policy override
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusRequested || b.Status == StatusConfirmed
}

// Interval возвращает занимаемый бронированием интервал
func (b *Booking) Interval() (Interval, error) {
	return NewInterval(b.StartTime, b.DurationMinutes)
}

// StartsAt возвращает момент начала бронирования как time.Time
func (b *Booking) StartsAt() time.Time {
	minutes, err := b.StartTime.Minutes()
	if err != nil {
		minutes = 0
	}
	d := b.BookingDate
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, d.Location())
}

// HasConflict проверяет, пересекается ли кандидат с каким-либо активным
// бронированием с учётом буфера. Интервал существующего бронирования
// расширяется на bufferMinutes с обеих сторон; отменённые и прочие
// неактивные бронирования конфликтами не считаются.
// Если onResource не nil, учитываются только бронирования этого ресурса
func HasConflict(candidate Interval, existing []*Booking, bufferMinutes int, onResource *int64) bool {
	return CountConflicts(candidate, existing, bufferMinutes, onResource) > 0
}

// CountConflicts подсчитывает активные бронирования, конфликтующие с кандидатом
func CountConflicts(candidate Interval, existing []*Booking, bufferMinutes int, onResource *int64) int {
	count := 0
	for _, booking := range existing {
		if !booking.IsActive() {
			continue
		}
		if onResource != nil {
			if booking.ResourceID == nil || *booking.ResourceID != *onResource {
				continue
			}
		}

		interval, err := booking.Interval()
		if err != nil {
			// Бронирование с нечитаемым временем не может подтвердить свободность слота
			count++
			continue
		}

		if candidate.Overlaps(interval.Expand(bufferMinutes)) {
			count++
		}
	}
	return count
}

// BusinessBookingsFilter фильтр для получения бронирований бизнеса
type BusinessBookingsFilter struct {
	BusinessID      int64          // Обязательный параметр
	ResourceID      *int64         // Фильтр по ресурсу (опционально)
	ServiceID       *int64         // Фильтр по услуге (опционально)
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли терминальные бронирования
}
