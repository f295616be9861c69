package update_business_rules

import (
	"context"

	"github.com/m04kA/SMC-ReservationEngine/internal/service/rules/models"
)

type RulesService interface {
	UpdateRules(ctx context.Context, req *models.UpdateRulesRequest) (*models.RulesResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
