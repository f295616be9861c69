package domain

import "time"

// RuleSet настраиваемые параметры бронирования бизнеса
// На бизнес действует ровно один активный RuleSet; обновляется целиком,
// частичная мутация во время вычислений не допускается
type RuleSet struct {
	ID                    int64
	BusinessID            int64
	AdvanceBookingHours   int // Минимальное время до начала бронирования
	MaxAdvanceBookingDays int // Максимальный горизонт бронирования
	CancellationHours     int // Окно бесплатной отмены
	BufferMinutes         int // Обязательная пауза вокруг бронирования
	AllowDoubleBooking    bool
	RequireDeposit        bool
	DepositAmount         float64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// DefaultRuleSet возвращает RuleSet со значениями по умолчанию
// Используется, когда бизнес не настроил собственные правила
func DefaultRuleSet(businessID int64) *RuleSet {
	return &RuleSet{
		BusinessID:            businessID,
		AdvanceBookingHours:   DefaultAdvanceBookingHours,
		MaxAdvanceBookingDays: DefaultMaxAdvanceBookingDays,
		CancellationHours:     DefaultCancellationHours,
		BufferMinutes:         DefaultBufferMinutes,
		AllowDoubleBooking:    false,
		RequireDeposit:        false,
		DepositAmount:         DefaultDepositAmount,
	}
}

// HasAdvanceLimit сообщает, ограничен ли горизонт бронирования
func (r *RuleSet) HasAdvanceLimit() bool {
	return r.MaxAdvanceBookingDays > 0
}
