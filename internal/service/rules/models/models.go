package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
)

// Request модели

// UpdateRulesRequest запрос на обновление правил бизнеса
// RuleSet заменяется целиком: частичная мутация правил не допускается
type UpdateRulesRequest struct {
	UserID     int64 `json:"userId"`
	BusinessID int64 `json:"businessId"`

	RuleSet   RuleSetRequest    `json:"ruleSet"`
	Overrides []OverrideRequest `json:"overrides,omitempty"`
	Policy    *PolicyRequest    `json:"policy,omitempty"`
}

// RuleSetRequest полный набор правил бронирования
type RuleSetRequest struct {
	AdvanceBookingHours   int     `json:"advanceBookingHours"`
	MaxAdvanceBookingDays int     `json:"maxAdvanceBookingDays"`
	CancellationHours     int     `json:"cancellationHours"`
	BufferMinutes         int     `json:"bufferMinutes"`
	AllowDoubleBooking    bool    `json:"allowDoubleBooking"`
	RequireDeposit        bool    `json:"requireDeposit"`
	DepositAmount         float64 `json:"depositAmount"`
}

// OverrideRequest переопределение ограничения каталога
type OverrideRequest struct {
	ConstraintID int64                   `json:"constraintId"`
	Enabled      *bool                   `json:"enabled,omitempty"`
	Rules        *domain.ConstraintRules `json:"rules,omitempty"`
}

// PolicyRequest новая версия политики отмен/переносов/неявок
// Создание новой версии закрывает текущую; прошлые решения не пересчитываются
type PolicyRequest struct {
	FreeCancellationHours  int     `json:"freeCancellationHours"`
	CancellationFeeFlat    float64 `json:"cancellationFeeFlat"`
	CancellationFeePercent float64 `json:"cancellationFeePercent"`

	MaxReschedules              int     `json:"maxReschedules"`
	RescheduleAllowedUntilHours int     `json:"rescheduleAllowedUntilHours"`
	RescheduleFeeFlat           float64 `json:"rescheduleFeeFlat"`

	NoShowGraceMinutes int     `json:"noShowGraceMinutes"`
	NoShowFeePercent   float64 `json:"noShowFeePercent"`
	NoShowBlockAfter   int     `json:"noShowBlockAfter"`
	NoShowWindowDays   int     `json:"noShowWindowDays"`
	NoShowBlockDays    int     `json:"noShowBlockDays"`

	DepositPercent float64 `json:"depositPercent"`
}

// Response модели

// RuleSetResponse настройки бронирования бизнеса
type RuleSetResponse struct {
	BusinessID            int64     `json:"businessId"`
	AdvanceBookingHours   int       `json:"advanceBookingHours"`
	MaxAdvanceBookingDays int       `json:"maxAdvanceBookingDays"`
	CancellationHours     int       `json:"cancellationHours"`
	BufferMinutes         int       `json:"bufferMinutes"`
	AllowDoubleBooking    bool      `json:"allowDoubleBooking"`
	RequireDeposit        bool      `json:"requireDeposit"`
	DepositAmount         float64   `json:"depositAmount"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty"`
}

// ConstraintResponse эффективное ограничение: каталог с учётом
// переопределений бизнеса
type ConstraintResponse struct {
	ID           int64                  `json:"id"`
	Name         string                 `json:"name"`
	Type         string                 `json:"type"`
	Rules        domain.ConstraintRules `json:"rules"`
	Priority     int                    `json:"priority"`
	Mandatory    bool                   `json:"mandatory"`
	Active       bool                   `json:"active"`
	Customizable bool                   `json:"customizable"`
	Overridden   bool                   `json:"overridden"`
}

// PolicyResponse действующая версия политики
type PolicyResponse struct {
	Version                     int     `json:"version"`
	FreeCancellationHours       int     `json:"freeCancellationHours"`
	CancellationFeeFlat         float64 `json:"cancellationFeeFlat"`
	CancellationFeePercent      float64 `json:"cancellationFeePercent"`
	MaxReschedules              int     `json:"maxReschedules"`
	RescheduleAllowedUntilHours int     `json:"rescheduleAllowedUntilHours"`
	RescheduleFeeFlat           float64 `json:"rescheduleFeeFlat"`
	NoShowGraceMinutes          int     `json:"noShowGraceMinutes"`
	NoShowFeePercent            float64 `json:"noShowFeePercent"`
	NoShowBlockAfter            int     `json:"noShowBlockAfter"`
	NoShowWindowDays            int     `json:"noShowWindowDays"`
	NoShowBlockDays             int     `json:"noShowBlockDays"`
	DepositPercent              float64 `json:"depositPercent"`
	EffectiveFrom               string  `json:"effectiveFrom,omitempty"` // ISO 8601
}

// RulesResponse полный набор действующих правил бизнеса
type RulesResponse struct {
	RuleSet     RuleSetResponse      `json:"ruleSet"`
	Constraints []ConstraintResponse `json:"constraints"`
	Policy      PolicyResponse       `json:"policy"`
}

// Методы конвертации

// ToDomainRuleSet конвертирует request в domain модель
func (r *UpdateRulesRequest) ToDomainRuleSet() *domain.RuleSet {
	return &domain.RuleSet{
		BusinessID:            r.BusinessID,
		AdvanceBookingHours:   r.RuleSet.AdvanceBookingHours,
		MaxAdvanceBookingDays: r.RuleSet.MaxAdvanceBookingDays,
		CancellationHours:     r.RuleSet.CancellationHours,
		BufferMinutes:         r.RuleSet.BufferMinutes,
		AllowDoubleBooking:    r.RuleSet.AllowDoubleBooking,
		RequireDeposit:        r.RuleSet.RequireDeposit,
		DepositAmount:         r.RuleSet.DepositAmount,
	}
}

// ToDomainPolicy конвертирует request в новую версию политики
func (p *PolicyRequest) ToDomainPolicy(businessID int64, version int, effectiveFrom time.Time) *domain.BookingPolicy {
	return &domain.BookingPolicy{
		BusinessID:                  businessID,
		Version:                     version,
		EffectiveFrom:               effectiveFrom,
		FreeCancellationHours:       p.FreeCancellationHours,
		CancellationFeeFlat:         p.CancellationFeeFlat,
		CancellationFeePercent:      p.CancellationFeePercent,
		MaxReschedules:              p.MaxReschedules,
		RescheduleAllowedUntilHours: p.RescheduleAllowedUntilHours,
		RescheduleFeeFlat:           p.RescheduleFeeFlat,
		NoShowGraceMinutes:          p.NoShowGraceMinutes,
		NoShowFeePercent:            p.NoShowFeePercent,
		NoShowBlockAfter:            p.NoShowBlockAfter,
		NoShowWindowDays:            p.NoShowWindowDays,
		NoShowBlockDays:             p.NoShowBlockDays,
		DepositPercent:              p.DepositPercent,
	}
}

// FromDomainRuleSet конвертирует domain модель в DTO
func FromDomainRuleSet(rs *domain.RuleSet) RuleSetResponse {
	return RuleSetResponse{
		BusinessID:            rs.BusinessID,
		AdvanceBookingHours:   rs.AdvanceBookingHours,
		MaxAdvanceBookingDays: rs.MaxAdvanceBookingDays,
		CancellationHours:     rs.CancellationHours,
		BufferMinutes:         rs.BufferMinutes,
		AllowDoubleBooking:    rs.AllowDoubleBooking,
		RequireDeposit:        rs.RequireDeposit,
		DepositAmount:         rs.DepositAmount,
		UpdatedAt:             rs.UpdatedAt,
	}
}

// FromDomainConstraints строит список эффективных ограничений
func FromDomainConstraints(defs []*domain.ConstraintDefinition, overrides map[int64]*domain.BusinessConstraintOverride) []ConstraintResponse {
	result := make([]ConstraintResponse, 0, len(defs))
	for _, def := range defs {
		override := overrides[def.ID]
		effective := def.Apply(override)
		result = append(result, ConstraintResponse{
			ID:           effective.ID,
			Name:         effective.Name,
			Type:         string(effective.Type),
			Rules:        effective.Rules,
			Priority:     effective.Priority,
			Mandatory:    effective.Mandatory,
			Active:       effective.Active,
			Customizable: effective.Customizable,
			Overridden:   override != nil && effective.Customizable,
		})
	}
	return result
}

// FromDomainPolicy конвертирует действующую политику в DTO
func FromDomainPolicy(p *domain.BookingPolicy) PolicyResponse {
	resp := PolicyResponse{
		Version:                     p.Version,
		FreeCancellationHours:       p.FreeCancellationHours,
		CancellationFeeFlat:         p.CancellationFeeFlat,
		CancellationFeePercent:      p.CancellationFeePercent,
		MaxReschedules:              p.MaxReschedules,
		RescheduleAllowedUntilHours: p.RescheduleAllowedUntilHours,
		RescheduleFeeFlat:           p.RescheduleFeeFlat,
		NoShowGraceMinutes:          p.NoShowGraceMinutes,
		NoShowFeePercent:            p.NoShowFeePercent,
		NoShowBlockAfter:            p.NoShowBlockAfter,
		NoShowWindowDays:            p.NoShowWindowDays,
		NoShowBlockDays:             p.NoShowBlockDays,
		DepositPercent:              p.DepositPercent,
	}
	if !p.EffectiveFrom.IsZero() {
		resp.EffectiveFrom = p.EffectiveFrom.Format(time.RFC3339)
	}
	return resp
}
