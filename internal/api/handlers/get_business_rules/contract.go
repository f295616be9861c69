package get_business_rules

import (
	"context"

	"github.com/m04kA/SMC-ReservationEngine/internal/service/rules/models"
)

type RulesService interface {
	GetRules(ctx context.Context, businessID int64) (*models.RulesResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
