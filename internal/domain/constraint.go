package domain

import "time"

// ConstraintType категория ограничения из каталога
type ConstraintType string

const (
	ConstraintAvailability ConstraintType = "availability"
	ConstraintCapacity     ConstraintType = "capacity"
	ConstraintTiming       ConstraintType = "timing"
	ConstraintStaffing     ConstraintType = "staffing"
	ConstraintEquipment    ConstraintType = "equipment"
	ConstraintCancellation ConstraintType = "cancellation"
	ConstraintReschedule   ConstraintType = "reschedule"
	ConstraintPayment      ConstraintType = "payment"
	ConstraintSafety       ConstraintType = "safety"
	ConstraintCompliance   ConstraintType = "compliance"
)

// ConstraintRules структурированный payload правила
// Заполняются только поля, относящиеся к типу ограничения; хранится как JSONB
type ConstraintRules struct {
	MaxPerCustomerPerDay *int     `json:"maxPerCustomerPerDay,omitempty"`
	MinDurationMinutes   *int     `json:"minDurationMinutes,omitempty"`
	MaxDurationMinutes   *int     `json:"maxDurationMinutes,omitempty"`
	MaxPartySize         *int     `json:"maxPartySize,omitempty"`
	RequiredSkill        *string  `json:"requiredSkill,omitempty"`
	MinSkillLevel        *int     `json:"minSkillLevel,omitempty"`
	MinNoticeMinutes     *int     `json:"minNoticeMinutes,omitempty"`
	DepositRequired      *bool    `json:"depositRequired,omitempty"`
	MinDepositAmount     *float64 `json:"minDepositAmount,omitempty"`
}

// ConstraintDefinition запись каталога ограничений
// Каталог определяется на уровне индустрии; бизнес может переопределить
// или отключить некритичные ограничения через BusinessConstraintOverride
type ConstraintDefinition struct {
	ID           int64
	Name         string
	Industry     string
	Type         ConstraintType
	Rules        ConstraintRules
	Priority     int // 1 = критичный ... 10 = рекомендательный
	Mandatory    bool
	Active       bool
	Customizable bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BusinessConstraintOverride переопределение ограничения конкретным бизнесом
// Ограничение без override использует значения каталога
type BusinessConstraintOverride struct {
	ID           int64
	BusinessID   int64
	ConstraintID int64
	Enabled      *bool            // nil = не менять активность
	Rules        *ConstraintRules // nil = не менять payload
	ApprovedBy   *int64
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Apply возвращает определение с учётом переопределения бизнеса
// Переопределение некастомизируемых или обязательных ограничений игнорируется
func (d ConstraintDefinition) Apply(override *BusinessConstraintOverride) ConstraintDefinition {
	if override == nil || !d.Customizable {
		return d
	}
	if override.Enabled != nil && !d.Mandatory {
		d.Active = *override.Enabled
	}
	if override.Rules != nil {
		d.Rules = *override.Rules
	}
	return d
}

// ConstraintResult результат вычисления одного ограничения
// Записывается в операцию аудита для каждого вычисленного ограничения,
// независимо от исхода
type ConstraintResult struct {
	Name      string         `json:"name"`
	Type      ConstraintType `json:"type"`
	Priority  int            `json:"priority"`
	Mandatory bool           `json:"mandatory"`
	Passed    bool           `json:"passed"`
	Detail    string         `json:"detail,omitempty"`
}

// Violation структурированное нарушение правила валидации
// Ошибки и предупреждения всегда возвращаются списком, чтобы API-слой мог
// объяснить причину отказа
type Violation struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Constraint *string `json:"constraint,omitempty"`
}

// Violation codes
const (
	ViolationAdvanceTooSoon   = "advance_booking_too_soon"
	ViolationAdvanceTooFar    = "advance_booking_too_far"
	ViolationInvalidInterval  = "invalid_interval"
	ViolationOutsideHours     = "outside_business_hours"
	ViolationClosedDay        = "business_closed"
	ViolationConstraintFailed = "constraint_failed"
	ViolationSlotConflict     = "slot_conflict"
	ViolationNoResource       = "no_resource_available"
	ViolationPreferenceDrop   = "preference_not_honored"
	ViolationIllegalState     = "illegal_transition"
	ViolationPolicy           = "policy_violation"
	ViolationMalformedRequest = "malformed_request"
)
