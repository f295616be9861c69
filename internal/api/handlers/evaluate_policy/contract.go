package evaluate_policy

import (
	"context"

	evaluatePolicy "github.com/m04kA/SMC-ReservationEngine/internal/usecase/evaluate_policy"
)

type EvaluatePolicyUseCase interface {
	Execute(ctx context.Context, req evaluatePolicy.EvaluatePolicyRequest) (*evaluatePolicy.EvaluatePolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
