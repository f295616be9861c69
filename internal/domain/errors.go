package domain

import (
	"fmt"
	"strings"
)

// ValidationError ошибка проверки бронирования: несёт полный список нарушений,
// чтобы API мог вернуть их клиенту одним ответом.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "booking validation failed"
	}
	codes := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		codes = append(codes, v.Code)
	}
	return fmt.Sprintf("booking validation failed: %s", strings.Join(codes, ", "))
}

// PolicyViolationError ошибка политики: переход запрещён действующей версией политики
type PolicyViolationError struct {
	Decision PolicyDecision
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation: %s not allowed: %s", e.Decision.Action, e.Decision.Reason)
}
