package domain

// Шаг сетки слотов. Слоты генерируются с фиксированной гранулярностью
// независимо от длительности услуги
const SlotStepMinutes = 15

// Default ruleset values
const (
	DefaultAdvanceBookingHours   = 2
	DefaultMaxAdvanceBookingDays = 90
	DefaultCancellationHours     = 24
	DefaultBufferMinutes         = 0
	DefaultDepositAmount         = 0
)

// Business validation constants
const (
	MinAdvanceBookingHours      = 0
	MaxAdvanceBookingHoursLimit = 720 // 30 дней
	MinAdvanceBookingDays       = 1
	MaxAdvanceBookingDaysLimit  = 365 // 1 год
	MinBufferMinutes            = 0
	MaxBufferMinutes            = 240 // 4 часа
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Constraint priority bounds: 1 = критичный, 10 = рекомендательный
const (
	ConstraintPriorityCritical = 1
	ConstraintPriorityAdvisory = 10
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// TerminalStatuses список терминальных статусов бронирования
// После перехода в терминальный статус дальнейшие переходы запрещены
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusRescheduled,
}

// ActiveStatuses список статусов, при которых бронирование занимает слот
// Используется при подсчёте конфликтов и доступных слотов
var ActiveStatuses = []BookingStatus{
	StatusRequested,
	StatusConfirmed,
}
