package evaluate_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationEngine/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationEngine/internal/api/middleware"
	evaluatePolicy "github.com/m04kA/SMC-ReservationEngine/internal/usecase/evaluate_policy"
)

const (
	msgInvalidBookingID    = "некорректный ID бронирования"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgBookingNotFound     = "бронирование не найдено"
	msgInvalidInput        = "некорректное действие политики"
	msgPolicyMisconfigured = "политика бизнеса настроена некорректно"
)

type Handler struct {
	useCase EvaluatePolicyUseCase
	logger  Logger
}

func NewHandler(useCase EvaluatePolicyUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/policy-evaluation
// Сухой расчёт решения политики: ничего не меняет и не журналируется
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/policy-evaluation - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/policy-evaluation - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req EvaluatePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/policy-evaluation - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(bookingID))
	if err != nil {
		switch {
		case errors.Is(err, evaluatePolicy.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/policy-evaluation - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, evaluatePolicy.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/policy-evaluation - Invalid input: booking_id=%d, action=%s",
				bookingID, req.Action)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, evaluatePolicy.ErrPolicyMisconfigured):
			h.logger.Error("POST /bookings/{id}/policy-evaluation - Policy misconfigured: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgPolicyMisconfigured)

		default:
			h.logger.Error("POST /bookings/{id}/policy-evaluation - Failed to evaluate policy: booking_id=%d, action=%s, error=%v",
				bookingID, req.Action, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/policy-evaluation - Policy evaluated: booking_id=%d, user_id=%d, action=%s, allowed=%t",
		bookingID, userID, req.Action, result.Decision.Allowed)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
