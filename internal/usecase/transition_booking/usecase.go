package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	bookingstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/txmanager"
)

// UseCase операции жизненного цикла бронирования
// Каждый переход выполняется в сериализуемой транзакции: строка бронирования
// блокируется, переход сверяется с таблицей статусов и политикой, затем
// атомарно пишутся статус, операция аудита и история
type UseCase struct {
	bookings     BookingRepository
	rules        RuleSetRepository
	operations   OperationRepository
	policy       PolicyEngine
	validator    Validator
	matcher      Matcher
	txManager    TxManager
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	bookings BookingRepository,
	rules RuleSetRepository,
	operations OperationRepository,
	policy PolicyEngine,
	validator Validator,
	matcher Matcher,
	txManager TxManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookings:     bookings,
		rules:        rules,
		operations:   operations,
		policy:       policy,
		validator:    validator,
		matcher:      matcher,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute выполняет операцию над бронированием.
// Отклонённая попытка тоже попадает в журнал операций - с признаком
// непройденных проверок, уже вне откаченной транзакции
func (uc *UseCase) Execute(ctx context.Context, req TransitionBookingRequest) (*TransitionBookingResponse, error) {
	opType, role, err := uc.validateRequest(&req)
	if err != nil {
		// Некорректный запрос с распознанной операцией тоже попадает в журнал
		if opType != "" {
			uc.recordFailedAttempt(ctx, req, opType, role, err)
		}
		return nil, err
	}

	resp, err := uc.attempt(ctx, req, opType, role)
	if err != nil && txmanager.IsCommitConflict(err) {
		uc.logger.Warn("Transition race lost, retrying once: booking=%d, operation=%s", req.BookingID, opType)
		resp, err = uc.attempt(ctx, req, opType, role)
		if err != nil && txmanager.IsCommitConflict(err) {
			err = fmt.Errorf("%w: concurrent update, please retry", ErrSlotNotAvailable)
		}
	}
	if err != nil {
		uc.recordFailedAttempt(ctx, req, opType, role, err)
		return nil, err
	}

	uc.logger.Info("Booking transition done: booking=%d, operation=%s, from=%s, to=%s",
		resp.BookingID, resp.Operation, resp.FromStatus, resp.ToStatus)
	return resp, nil
}

func (uc *UseCase) attempt(ctx context.Context, req TransitionBookingRequest, opType domain.OperationType, role domain.ActorRole) (*TransitionBookingResponse, error) {
	var resp *TransitionBookingResponse

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookings.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingstore.ErrBookingNotFound) {
				return fmt.Errorf("%w: booking %d", ErrBookingNotFound, req.BookingID)
			}
			return fmt.Errorf("%w: failed to get booking %d: %v", ErrInternalService, req.BookingID, err)
		}

		resp = &TransitionBookingResponse{
			BookingID:  booking.ID,
			Operation:  string(opType),
			FromStatus: string(booking.Status),
			ToStatus:   string(booking.Status),
		}

		switch opType {
		case domain.OperationConfirm:
			return uc.confirm(txCtx, booking, req, role, resp)
		case domain.OperationCancel:
			return uc.cancel(txCtx, booking, req, role, resp)
		case domain.OperationComplete:
			return uc.complete(txCtx, booking, req, role, resp)
		case domain.OperationNoShow:
			return uc.noShow(txCtx, booking, req, role, resp)
		case domain.OperationReschedule:
			return uc.reschedule(txCtx, booking, req, role, resp)
		case domain.OperationRefund, domain.OperationCharge:
			return uc.financial(txCtx, booking, req, opType, role, resp)
		case domain.OperationReminderSent:
			return uc.reminderSent(txCtx, booking, req, role, resp)
		default:
			return fmt.Errorf("%w: operation %q is not supported", ErrInvalidInput, opType)
		}
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *UseCase) confirm(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := requireRole(role, domain.ActorStaff, domain.ActorSystem, domain.ActorAdmin); err != nil {
		return err
	}
	if err := checkTransition(booking, domain.StatusConfirmed); err != nil {
		return err
	}

	if err := uc.bookings.UpdateStatus(ctx, booking.ID, domain.StatusConfirmed); err != nil {
		return fmt.Errorf("%w: failed to update status: %v", ErrInternalService, err)
	}
	op, err := uc.appendTransitionOp(ctx, booking, domain.OperationConfirm, domain.StatusConfirmed, req, role,
		&domain.StatusChangePayload{Reason: deref(req.Reason)}, 0)
	if err != nil {
		return err
	}
	if err := uc.appendHistory(ctx, booking, domain.StatusConfirmed, req, op.ID); err != nil {
		return err
	}

	// Инструкция внешнему worker: зафиксировать неявку после льготного периода
	policy, err := uc.policy.Current(ctx, booking.BusinessID)
	if err != nil {
		return err
	}
	executeAt := booking.StartsAt().Add(time.Duration(policy.NoShowGraceMinutes) * time.Minute)
	if executeAt.After(uc.timeProvider.Now()) {
		if _, err := uc.operations.CreateScheduledAction(ctx, &domain.ScheduledAction{
			BookingID: booking.ID,
			Type:      domain.ScheduledAutoNoShow,
			ExecuteAt: executeAt,
		}); err != nil {
			return fmt.Errorf("%w: failed to schedule no-show check: %v", ErrInternalService, err)
		}
	}

	resp.ToStatus = string(domain.StatusConfirmed)
	return nil
}

func (uc *UseCase) cancel(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := checkTransition(booking, domain.StatusCancelled); err != nil {
		return err
	}

	_, decision, err := uc.policy.Decide(ctx, booking, domain.PolicyActionCancel, req.Emergency)
	if err != nil {
		return err
	}
	resp.Decision = decision
	if !decision.Allowed {
		return &domain.PolicyViolationError{Decision: *decision}
	}

	if err := uc.bookings.Terminate(ctx, booking.ID, domain.StatusCancelled, deref(req.Reason)); err != nil {
		return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternalService, err)
	}
	op, err := uc.appendTransitionOp(ctx, booking, domain.OperationCancel, domain.StatusCancelled, req, role,
		&domain.CancelPayload{
			Reason:         deref(req.Reason),
			FeeAmount:      decision.FeeAmount,
			RefundEligible: decision.RefundEligible,
			Emergency:      req.Emergency,
		}, decision.FeeAmount)
	if err != nil {
		return err
	}
	if err := uc.appendHistory(ctx, booking, domain.StatusCancelled, req, op.ID); err != nil {
		return err
	}
	if err := uc.operations.CancelScheduledActions(ctx, booking.ID); err != nil {
		return fmt.Errorf("%w: failed to cancel scheduled actions: %v", ErrInternalService, err)
	}

	resp.ToStatus = string(domain.StatusCancelled)
	return nil
}

func (uc *UseCase) complete(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := requireRole(role, domain.ActorStaff, domain.ActorSystem, domain.ActorAdmin); err != nil {
		return err
	}
	if err := checkTransition(booking, domain.StatusCompleted); err != nil {
		return err
	}

	if err := uc.bookings.UpdateStatus(ctx, booking.ID, domain.StatusCompleted); err != nil {
		return fmt.Errorf("%w: failed to update status: %v", ErrInternalService, err)
	}
	op, err := uc.appendTransitionOp(ctx, booking, domain.OperationComplete, domain.StatusCompleted, req, role,
		&domain.StatusChangePayload{Reason: deref(req.Reason)}, 0)
	if err != nil {
		return err
	}
	if err := uc.appendHistory(ctx, booking, domain.StatusCompleted, req, op.ID); err != nil {
		return err
	}
	if err := uc.operations.CancelScheduledActions(ctx, booking.ID); err != nil {
		return fmt.Errorf("%w: failed to cancel scheduled actions: %v", ErrInternalService, err)
	}

	resp.ToStatus = string(domain.StatusCompleted)
	return nil
}

func (uc *UseCase) noShow(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := requireRole(role, domain.ActorStaff, domain.ActorSystem, domain.ActorAdmin); err != nil {
		return err
	}
	if err := checkTransition(booking, domain.StatusNoShow); err != nil {
		return err
	}

	_, decision, err := uc.policy.Decide(ctx, booking, domain.PolicyActionNoShow, false)
	if err != nil {
		return err
	}
	resp.Decision = decision
	if !decision.Allowed {
		return &domain.PolicyViolationError{Decision: *decision}
	}

	if err := uc.bookings.UpdateStatus(ctx, booking.ID, domain.StatusNoShow); err != nil {
		return fmt.Errorf("%w: failed to update status: %v", ErrInternalService, err)
	}
	op, err := uc.appendTransitionOp(ctx, booking, domain.OperationNoShow, domain.StatusNoShow, req, role,
		&domain.StatusChangePayload{Reason: deref(req.Reason)}, decision.FeeAmount)
	if err != nil {
		return err
	}
	if err := uc.appendHistory(ctx, booking, domain.StatusNoShow, req, op.ID); err != nil {
		return err
	}
	if err := uc.operations.CancelScheduledActions(ctx, booking.ID); err != nil {
		return fmt.Errorf("%w: failed to cancel scheduled actions: %v", ErrInternalService, err)
	}

	resp.ToStatus = string(domain.StatusNoShow)
	return nil
}

func (uc *UseCase) financial(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, opType domain.OperationType, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := requireRole(role, domain.ActorStaff, domain.ActorAdmin); err != nil {
		return err
	}

	impact := *req.Amount
	if opType == domain.OperationRefund {
		impact = -impact
	}

	_, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:       booking.ID,
		BusinessID:      booking.BusinessID,
		Type:            opType,
		PerformedBy:     req.ActorID,
		PerformedByRole: role,
		PriorStatus:     &booking.Status,
		NewStatus:       booking.Status,
		Payload: &domain.FinancialPayload{
			Amount: *req.Amount,
			Reason: deref(req.Reason),
		},
		ConstraintsPassed: true,
		FinancialImpact:   impact,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append %s operation: %v", ErrInternalService, opType, err)
	}
	return nil
}

func (uc *UseCase) reminderSent(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := requireRole(role, domain.ActorSystem); err != nil {
		return err
	}

	_, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:         booking.ID,
		BusinessID:        booking.BusinessID,
		Type:              domain.OperationReminderSent,
		PerformedBy:       req.ActorID,
		PerformedByRole:   role,
		PriorStatus:       &booking.Status,
		NewStatus:         booking.Status,
		Payload:           &domain.StatusChangePayload{Reason: deref(req.Reason)},
		ConstraintsPassed: true,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append reminder operation: %v", ErrInternalService, err)
	}
	return nil
}

func (uc *UseCase) appendTransitionOp(
	ctx context.Context,
	booking *domain.Booking,
	opType domain.OperationType,
	target domain.BookingStatus,
	req TransitionBookingRequest,
	role domain.ActorRole,
	payload domain.OperationPayload,
	financialImpact float64,
) (*domain.BookingOperation, error) {
	prior := booking.Status
	op, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:         booking.ID,
		BusinessID:        booking.BusinessID,
		Type:              opType,
		PerformedBy:       req.ActorID,
		PerformedByRole:   role,
		PriorStatus:       &prior,
		NewStatus:         target,
		Payload:           payload,
		ConstraintsPassed: true,
		FinancialImpact:   financialImpact,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to append %s operation: %v", ErrInternalService, opType, err)
	}
	return op, nil
}

func (uc *UseCase) appendHistory(ctx context.Context, booking *domain.Booking, target domain.BookingStatus, req TransitionBookingRequest, opID int64) error {
	prior := booking.Status
	_, err := uc.operations.AppendStatusHistory(ctx, &domain.BookingStatusHistory{
		BookingID:   booking.ID,
		FromStatus:  &prior,
		ToStatus:    target,
		Reason:      deref(req.Reason),
		OperationID: opID,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append status history: %v", ErrInternalService, err)
	}
	return nil
}

// recordFailedAttempt пишет отклонённую попытку перехода в журнал операций.
// Запись идёт вне откаченной транзакции и не влияет на итог операции
func (uc *UseCase) recordFailedAttempt(ctx context.Context, req TransitionBookingRequest, opType domain.OperationType, role domain.ActorRole, cause error) {
	violations := violationsFromError(cause)
	if violations == nil {
		return
	}

	booking, err := uc.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		uc.logger.Warn("Failed attempt not journaled, booking unavailable: booking=%d, err=%v", req.BookingID, err)
		return
	}

	prior := booking.Status
	if _, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:         booking.ID,
		BusinessID:        booking.BusinessID,
		Type:              opType,
		PerformedBy:       req.ActorID,
		PerformedByRole:   role,
		PriorStatus:       &prior,
		NewStatus:         booking.Status,
		ConstraintsPassed: false,
		Violations:        violations,
	}); err != nil {
		uc.logger.Error("Failed to journal rejected transition: booking=%d, operation=%s, err=%v",
			booking.ID, opType, err)
	}
}

// violationsFromError извлекает нарушения из бизнес-ошибок перехода.
// Технические ошибки не журналируются как отклонённые попытки
func violationsFromError(err error) []domain.Violation {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Violations
	}
	var policyErr *domain.PolicyViolationError
	if errors.As(err, &policyErr) {
		return []domain.Violation{{
			Code:    domain.ViolationPolicy,
			Message: policyErr.Decision.Reason,
		}}
	}
	if errors.Is(err, ErrIllegalTransition) || errors.Is(err, ErrForbidden) {
		return []domain.Violation{{Code: domain.ViolationIllegalState, Message: err.Error()}}
	}
	if errors.Is(err, ErrSlotNotAvailable) {
		return []domain.Violation{{Code: domain.ViolationSlotConflict, Message: err.Error()}}
	}
	if errors.Is(err, ErrInvalidInput) {
		return []domain.Violation{{Code: domain.ViolationMalformedRequest, Message: err.Error()}}
	}
	return nil
}

func (uc *UseCase) validateRequest(req *TransitionBookingRequest) (domain.OperationType, domain.ActorRole, error) {
	if req.BookingID <= 0 {
		return "", "", fmt.Errorf("%w: booking id must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return "", "", fmt.Errorf("%w: actor id must be positive", ErrInvalidInput)
	}

	opType, ok := domain.ParseOperationType(req.Operation)
	if !ok || opType == domain.OperationCreate || opType == domain.OperationModify {
		return "", "", fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, req.Operation)
	}

	role := domain.ActorCustomer
	if req.ActorRole != "" {
		parsed, ok := domain.ParseActorRole(req.ActorRole)
		if !ok {
			return "", "", fmt.Errorf("%w: unknown actor role %q", ErrInvalidInput, req.ActorRole)
		}
		role = parsed
	}

	// Дальше тип операции и роль уже распознаны: они возвращаются вместе
	// с ошибкой, чтобы отклонённую попытку можно было записать в журнал
	switch opType {
	case domain.OperationReschedule:
		if req.NewDate == nil || req.NewStartTime == nil {
			return opType, role, fmt.Errorf("%w: new_date and new_start_time are required for reschedule", ErrInvalidInput)
		}
		if _, err := time.Parse(domain.DateFormat, *req.NewDate); err != nil {
			return opType, role, fmt.Errorf("%w: new_date must be in YYYY-MM-DD format", ErrInvalidInput)
		}
		if err := req.NewStartTime.Validate(); err != nil {
			return opType, role, fmt.Errorf("%w: new_start_time must be in HH:MM format", ErrInvalidInput)
		}
	case domain.OperationRefund, domain.OperationCharge:
		if req.Amount == nil || *req.Amount <= 0 {
			return opType, role, fmt.Errorf("%w: amount must be positive for %s", ErrInvalidInput, opType)
		}
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return opType, role, fmt.Errorf("%w: reason must not exceed %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return opType, role, nil
}

func checkTransition(booking *domain.Booking, target domain.BookingStatus) error {
	if !booking.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, booking.Status, target)
	}
	return nil
}

func requireRole(role domain.ActorRole, allowed ...domain.ActorRole) error {
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s", ErrForbidden, role)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
