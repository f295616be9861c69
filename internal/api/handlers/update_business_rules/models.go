package update_business_rules

import (
	"github.com/m04kA/SMC-ReservationEngine/internal/service/rules/models"
)

// UpdateBusinessRulesRequest HTTP request model.
// RuleSet заменяется целиком, policy создаёт новую версию
type UpdateBusinessRulesRequest struct {
	RuleSet   models.RuleSetRequest    `json:"ruleSet"`
	Overrides []models.OverrideRequest `json:"overrides,omitempty"`
	Policy    *models.PolicyRequest    `json:"policy,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateBusinessRulesRequest) ToServiceRequest(businessID, userID int64) *models.UpdateRulesRequest {
	return &models.UpdateRulesRequest{
		UserID:     userID,
		BusinessID: businessID,
		RuleSet:    r.RuleSet,
		Overrides:  r.Overrides,
		Policy:     r.Policy,
	}
}
