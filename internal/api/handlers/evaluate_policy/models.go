package evaluate_policy

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	evaluatePolicy "github.com/m04kA/SMC-ReservationEngine/internal/usecase/evaluate_policy"
)

// EvaluatePolicyRequest HTTP request model
type EvaluatePolicyRequest struct {
	Action    string `json:"action"` // cancel / reschedule / no_show / payment
	Emergency bool   `json:"emergency,omitempty"`
}

// EvaluatePolicyResponse HTTP response model
type EvaluatePolicyResponse struct {
	BookingID     int64                 `json:"bookingId"`
	PolicyVersion int                   `json:"policyVersion"`
	Decision      domain.PolicyDecision `json:"decision"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *EvaluatePolicyRequest) ToUseCaseRequest(bookingID int64) evaluatePolicy.EvaluatePolicyRequest {
	return evaluatePolicy.EvaluatePolicyRequest{
		BookingID: bookingID,
		Action:    r.Action,
		Emergency: r.Emergency,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *evaluatePolicy.EvaluatePolicyResponse) *EvaluatePolicyResponse {
	return &EvaluatePolicyResponse{
		BookingID:     resp.BookingID,
		PolicyVersion: resp.PolicyVersion,
		Decision:      resp.Decision,
	}
}
