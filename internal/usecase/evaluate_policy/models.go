package evaluate_policy

import "github.com/m04kA/SMC-ReservationEngine/internal/domain"

// EvaluatePolicyRequest запрос на оценку действия над бронированием
type EvaluatePolicyRequest struct {
	BookingID int64
	Action    string // cancel / reschedule / no_show / payment
	// Аварийное освобождение клиента от штрафа; решение логируется
	Emergency bool
}

// EvaluatePolicyResponse решение политики с указанием применённой версии
type EvaluatePolicyResponse struct {
	BookingID     int64
	PolicyVersion int
	Decision      domain.PolicyDecision
}
