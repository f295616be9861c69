package domain

import "time"

// FeeType способ расчёта штрафа
type FeeType string

const (
	FeeFlat    FeeType = "flat"
	FeePercent FeeType = "percent"
)

// PolicyAction действие, оцениваемое политикой
type PolicyAction string

const (
	PolicyActionCancel     PolicyAction = "cancel"
	PolicyActionReschedule PolicyAction = "reschedule"
	PolicyActionNoShow     PolicyAction = "no_show"
	PolicyActionPayment    PolicyAction = "payment"
)

// ParsePolicyAction валидирует и конвертирует строку в PolicyAction
func ParsePolicyAction(s string) (PolicyAction, bool) {
	switch action := PolicyAction(s); action {
	case PolicyActionCancel, PolicyActionReschedule, PolicyActionNoShow, PolicyActionPayment:
		return action, true
	default:
		return "", false
	}
}

// BookingPolicy версионированные правила отмены/переноса/неявки/оплаты
// В каждый момент времени действует ровно одна версия политики бизнеса
type BookingPolicy struct {
	ID         int64
	BusinessID int64
	Version    int
	// Период действия версии; EffectiveTo == nil означает текущую версию
	EffectiveFrom time.Time
	EffectiveTo   *time.Time

	// Отмена
	FreeCancellationHours  int
	CancellationFeeFlat    float64
	CancellationFeePercent float64

	// Перенос
	MaxReschedules              int
	RescheduleAllowedUntilHours int
	RescheduleFeeFlat           float64

	// Неявка
	NoShowGraceMinutes int
	NoShowFeePercent   float64
	NoShowBlockAfter   int // Количество неявок, после которого рекомендуется блокировка
	NoShowWindowDays   int // Скользящее окно подсчёта неявок
	NoShowBlockDays    int // Рекомендуемая длительность блокировки

	// Оплата
	DepositPercent float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEffectiveAt проверяет, действует ли версия политики в указанный момент
func (p *BookingPolicy) IsEffectiveAt(at time.Time) bool {
	if at.Before(p.EffectiveFrom) {
		return false
	}
	return p.EffectiveTo == nil || at.Before(*p.EffectiveTo)
}

// CancellationFeeConfigured проверяет, что задан ровно один способ расчёта
// штрафа за отмену. Обе ненулевые ставки - ошибка конфигурации, суммирование
// не допускается
func (p *BookingPolicy) CancellationFeeConfigured() bool {
	return p.CancellationFeeFlat == 0 || p.CancellationFeePercent == 0
}

// DefaultBookingPolicy возвращает политику по умолчанию
// Используется, когда бизнес не настроил собственную политику
func DefaultBookingPolicy(businessID int64) *BookingPolicy {
	return &BookingPolicy{
		BusinessID:                  businessID,
		Version:                     1,
		FreeCancellationHours:       DefaultCancellationHours,
		CancellationFeePercent:      0,
		MaxReschedules:              2,
		RescheduleAllowedUntilHours: 4,
		NoShowGraceMinutes:          15,
		NoShowBlockAfter:            3,
		NoShowWindowDays:            90,
		NoShowBlockDays:             30,
	}
}

// PolicyDecision результат оценки политики
// PolicyViolation возвращается вместе с деталями (штраф, причина),
// а не как голый отказ
type PolicyDecision struct {
	Action         PolicyAction `json:"action"`
	Allowed        bool         `json:"allowed"`
	FeeAmount      float64      `json:"feeAmount"`
	RefundEligible bool         `json:"refundEligible"`
	Reason         string       `json:"reason,omitempty"`

	// Рекомендация блокировки клиента за повторные неявки
	// Движок только формирует рекомендацию, применение - задача внешней системы
	BlockRecommended bool `json:"blockRecommended,omitempty"`
	BlockDays        int  `json:"blockDays,omitempty"`
}
