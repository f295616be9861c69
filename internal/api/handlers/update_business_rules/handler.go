package update_business_rules

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationEngine/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationEngine/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationEngine/internal/service/rules"
)

const (
	msgInvalidBusinessID   = "некорректный ID бизнеса"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgBusinessNotFound    = "бизнес не найден"
	msgForbidden           = "доступ запрещен"
	msgInvalidData         = "некорректные данные правил"
	msgConstraintNotFound  = "ограничение не найдено в каталоге"
	msgConstraintImmutable = "ограничение не допускает переопределения"
)

type Handler struct {
	service RulesService
	logger  Logger
}

func NewHandler(service RulesService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	businessID, err := strconv.ParseInt(vars["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/rules - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /businesses/{id}/rules - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateBusinessRulesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Сервис сам проверит права менеджера
	result, err := h.service.UpdateRules(r.Context(), req.ToServiceRequest(businessID, userID))
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrBusinessNotFound):
			h.logger.Warn("PUT /businesses/{id}/rules - Business not found: business_id=%d", businessID)
			handlers.RespondNotFound(w, msgBusinessNotFound)

		case errors.Is(err, rules.ErrAccessDenied):
			h.logger.Warn("PUT /businesses/{id}/rules - Access denied: business_id=%d, user_id=%d",
				businessID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rules.ErrConstraintNotFound):
			h.logger.Warn("PUT /businesses/{id}/rules - Constraint not found: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondBadRequest(w, msgConstraintNotFound)

		case errors.Is(err, rules.ErrConstraintNotCustomizable):
			h.logger.Warn("PUT /businesses/{id}/rules - Constraint not customizable: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgConstraintImmutable)

		case errors.Is(err, rules.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/rules - Invalid input: business_id=%d, error=%v", businessID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /businesses/{id}/rules - Failed to update rules: business_id=%d, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/rules - Rules updated successfully: business_id=%d, user_id=%d",
		businessID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
