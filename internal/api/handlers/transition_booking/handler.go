package transition_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationEngine/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationEngine/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	transitionBooking "github.com/m04kA/SMC-ReservationEngine/internal/usecase/transition_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBookingNotFound    = "бронирование не найдено"
	msgIllegalTransition  = "переход в указанный статус невозможен"
	msgForbidden          = "операция недоступна для данной роли"
	msgSlotNotAvailable   = "новый временной слот недоступен"
	msgInvalidInput       = "некорректные данные операции"
	msgPolicyBlocked      = "операция запрещена политикой бизнеса"
	msgValidationFailed   = "новый слот нарушает ограничения бизнеса"
)

type Handler struct {
	useCase TransitionBookingUseCase
	logger  Logger
}

func NewHandler(useCase TransitionBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/transition
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/transition - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req TransitionBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Роль приходит из заголовка доверенного gateway, не из тела запроса
	useCaseReq, err := req.ToUseCaseRequest(bookingID, actorID, middleware.GetUserRole(r.Context()))
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/transition - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var policyErr *domain.PolicyViolationError
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &policyErr):
			h.logger.Warn("POST /bookings/{id}/transition - Blocked by policy: booking_id=%d, operation=%s, reason=%s",
				bookingID, req.Operation, policyErr.Decision.Reason)
			handlers.RespondJSON(w, http.StatusConflict, PolicyBlockedResponse{
				Error:    msgPolicyBlocked,
				Decision: policyErr.Decision,
			})

		case errors.As(err, &validationErr):
			h.logger.Warn("POST /bookings/{id}/transition - Validation failed: booking_id=%d, operation=%s, violations=%d",
				bookingID, req.Operation, len(validationErr.Violations))
			handlers.RespondJSON(w, http.StatusUnprocessableEntity, ValidationFailedResponse{
				Error:      msgValidationFailed,
				Violations: validationErr.Violations,
			})

		case errors.Is(err, transitionBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/transition - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, transitionBooking.ErrIllegalTransition):
			h.logger.Warn("POST /bookings/{id}/transition - Illegal transition: booking_id=%d, operation=%s",
				bookingID, req.Operation)
			handlers.RespondError(w, http.StatusConflict, msgIllegalTransition)

		case errors.Is(err, transitionBooking.ErrForbidden):
			h.logger.Warn("POST /bookings/{id}/transition - Forbidden: booking_id=%d, actor_id=%d, operation=%s",
				bookingID, actorID, req.Operation)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, transitionBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/transition - Slot not available: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, transitionBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/transition - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/{id}/transition - Failed to apply operation: booking_id=%d, operation=%s, error=%v",
				bookingID, req.Operation, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/transition - Operation applied: booking_id=%d, operation=%s, status=%s -> %s",
		bookingID, result.Operation, result.FromStatus, result.ToStatus)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
