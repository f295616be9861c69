package validate_booking

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/ptr"
)

// EvaluateCatalog вычисляет весь каталог ограничений для собранных фактов.
// Каталог ожидается отсортированным по приоритету (критичные первыми).
// Результат записывается для каждого вычисленного ограничения независимо
// от исхода; провал обязательного даёт нарушение, необязательного - предупреждение
func EvaluateCatalog(
	defs []*domain.ConstraintDefinition,
	overrides map[int64]*domain.BusinessConstraintOverride,
	facts Facts,
) (results []domain.ConstraintResult, violations []domain.Violation, warnings []domain.Violation) {
	for _, def := range defs {
		effective := def.Apply(overrides[def.ID])
		if !effective.Active {
			continue
		}

		passed, detail := evaluateRules(effective, facts)
		results = append(results, domain.ConstraintResult{
			Name:      effective.Name,
			Type:      effective.Type,
			Priority:  effective.Priority,
			Mandatory: effective.Mandatory,
			Passed:    passed,
			Detail:    detail,
		})

		if passed {
			continue
		}

		violation := domain.Violation{
			Code:       domain.ViolationConstraintFailed,
			Message:    detail,
			Constraint: ptr.Ptr(effective.Name),
		}
		if effective.Mandatory {
			violations = append(violations, violation)
		} else {
			warnings = append(warnings, violation)
		}
	}
	return results, violations, warnings
}

// evaluateRules проверяет payload одного ограничения против фактов.
// Правила, для которых фактов нет (например, требование депозита),
// считаются пройденными с пояснением
func evaluateRules(def domain.ConstraintDefinition, facts Facts) (bool, string) {
	rules := def.Rules

	if rules.MaxPerCustomerPerDay != nil && facts.CustomerBookingsSameDay >= *rules.MaxPerCustomerPerDay {
		return false, fmt.Sprintf("customer already has %d booking(s) this day, limit is %d",
			facts.CustomerBookingsSameDay, *rules.MaxPerCustomerPerDay)
	}
	if rules.MinDurationMinutes != nil && facts.DurationMinutes < *rules.MinDurationMinutes {
		return false, fmt.Sprintf("duration %d min is below minimum %d min",
			facts.DurationMinutes, *rules.MinDurationMinutes)
	}
	if rules.MaxDurationMinutes != nil && facts.DurationMinutes > *rules.MaxDurationMinutes {
		return false, fmt.Sprintf("duration %d min exceeds maximum %d min",
			facts.DurationMinutes, *rules.MaxDurationMinutes)
	}
	if rules.MinNoticeMinutes != nil {
		noticeMinutes := (facts.StartsAt - facts.Now) / 60
		if noticeMinutes < int64(*rules.MinNoticeMinutes) {
			return false, fmt.Sprintf("booking requires at least %d min notice", *rules.MinNoticeMinutes)
		}
	}
	if (rules.RequiredSkill != nil || rules.MinSkillLevel != nil) &&
		facts.RosterSize > 0 && facts.QualifiedResourceCount == 0 {
		return false, "no resource satisfies the skill requirement"
	}
	if rules.DepositRequired != nil && *rules.DepositRequired {
		return true, "deposit is collected at confirmation"
	}

	return true, ""
}
