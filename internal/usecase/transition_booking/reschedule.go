package transition_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
)

// reminderLeadTime за сколько до начала отправляется напоминание
const reminderLeadTime = 24 * time.Hour

// reschedule переносит бронирование: старое закрывается терминальным
// статусом rescheduled, новое создаётся заново и проходит полную валидацию.
// Обе операции пары несут общий ReferenceID и пишутся в одной транзакции
func (uc *UseCase) reschedule(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest, role domain.ActorRole, resp *TransitionBookingResponse) error {
	if err := checkTransition(booking, domain.StatusRescheduled); err != nil {
		return err
	}

	_, decision, err := uc.policy.Decide(ctx, booking, domain.PolicyActionReschedule, false)
	if err != nil {
		return err
	}
	resp.Decision = decision
	if !decision.Allowed {
		return &domain.PolicyViolationError{Decision: *decision}
	}

	verdict, err := uc.validator.Execute(ctx, validate_booking.ValidateBookingRequest{
		BusinessID:      booking.BusinessID,
		CustomerID:      booking.CustomerID,
		ServiceID:       booking.ServiceID,
		BookingDate:     *req.NewDate,
		StartTime:       *req.NewStartTime,
		DurationMinutes: &booking.DurationMinutes,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to validate new slot: %v", ErrInternalService, err)
	}
	if !verdict.Valid {
		return &domain.ValidationError{Violations: verdict.Violations}
	}

	resourceID, warnings, err := uc.matchNewSlot(ctx, booking, req)
	if err != nil {
		return err
	}
	resp.Warnings = append(verdict.Warnings, warnings...)

	now := uc.timeProvider.Now()
	newDate, err := time.ParseInLocation(domain.DateFormat, *req.NewDate, now.Location())
	if err != nil {
		return fmt.Errorf("%w: new_date must be in YYYY-MM-DD format", ErrInvalidInput)
	}

	oldID := booking.ID
	created, err := uc.bookings.Create(ctx, &domain.Booking{
		BusinessID:       booking.BusinessID,
		CustomerID:       booking.CustomerID,
		ServiceID:        booking.ServiceID,
		ResourceID:       resourceID,
		BookingDate:      newDate,
		StartTime:        *req.NewStartTime,
		DurationMinutes:  booking.DurationMinutes,
		Status:           domain.StatusRequested,
		RelatedBookingID: &oldID,
		RescheduleCount:  booking.RescheduleCount + 1,
		ServiceName:      booking.ServiceName,
		ServicePrice:     booking.ServicePrice,
		Industry:         booking.Industry,
		DepositAmount:    booking.DepositAmount,
		Notes:            booking.Notes,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create rescheduled booking: %v", ErrInternalService, err)
	}

	if err := uc.bookings.Terminate(ctx, booking.ID, domain.StatusRescheduled, deref(req.Reason)); err != nil {
		return fmt.Errorf("%w: failed to close old booking: %v", ErrInternalService, err)
	}

	reference := uuid.NewString()
	prior := booking.Status

	oldOp, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:       booking.ID,
		BusinessID:      booking.BusinessID,
		Type:            domain.OperationReschedule,
		PerformedBy:     req.ActorID,
		PerformedByRole: role,
		PriorStatus:     &prior,
		NewStatus:       domain.StatusRescheduled,
		Payload: &domain.ReschedulePayload{
			OldBookingID: booking.ID,
			NewBookingID: created.ID,
			NewDate:      *req.NewDate,
			NewStartTime: *req.NewStartTime,
			FeeAmount:    decision.FeeAmount,
		},
		ConstraintsPassed: true,
		FinancialImpact:   decision.FeeAmount,
		ReferenceID:       reference,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append reschedule operation: %v", ErrInternalService, err)
	}

	newOp, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:       created.ID,
		BusinessID:      created.BusinessID,
		Type:            domain.OperationCreate,
		PerformedBy:     req.ActorID,
		PerformedByRole: role,
		NewStatus:       domain.StatusRequested,
		Payload: &domain.CreatePayload{
			ServiceID:  created.ServiceID,
			ResourceID: created.ResourceID,
			Date:       *req.NewDate,
			StartTime:  created.StartTime,
			Deposit:    created.DepositAmount,
		},
		ConstraintsPassed: true,
		ConstraintResults: verdict.Results,
		ReferenceID:       reference,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append create operation: %v", ErrInternalService, err)
	}

	if _, err := uc.operations.AppendStatusHistory(ctx, &domain.BookingStatusHistory{
		BookingID:   booking.ID,
		FromStatus:  &prior,
		ToStatus:    domain.StatusRescheduled,
		Reason:      deref(req.Reason),
		OperationID: oldOp.ID,
	}); err != nil {
		return fmt.Errorf("%w: failed to append status history: %v", ErrInternalService, err)
	}
	if _, err := uc.operations.AppendStatusHistory(ctx, &domain.BookingStatusHistory{
		BookingID:   created.ID,
		ToStatus:    domain.StatusRequested,
		OperationID: newOp.ID,
	}); err != nil {
		return fmt.Errorf("%w: failed to append status history: %v", ErrInternalService, err)
	}

	if err := uc.operations.CancelScheduledActions(ctx, booking.ID); err != nil {
		return fmt.Errorf("%w: failed to cancel scheduled actions: %v", ErrInternalService, err)
	}
	executeAt := created.StartsAt().Add(-reminderLeadTime)
	if executeAt.After(now) {
		if _, err := uc.operations.CreateScheduledAction(ctx, &domain.ScheduledAction{
			BookingID: created.ID,
			Type:      domain.ScheduledReminder,
			ExecuteAt: executeAt,
		}); err != nil {
			return fmt.Errorf("%w: failed to schedule reminder: %v", ErrInternalService, err)
		}
	}

	newID := created.ID
	resp.ToStatus = string(domain.StatusRescheduled)
	resp.NewBookingID = &newID
	return nil
}

// matchNewSlot подбирает ресурс для нового слота.
// Бронирование уровня бизнеса остаётся без ресурса; для бронирования
// с ресурсом отсутствие свободного кандидата означает занятый слот
func (uc *UseCase) matchNewSlot(ctx context.Context, booking *domain.Booking, req TransitionBookingRequest) (*int64, []domain.Violation, error) {
	rules, err := uc.loadRules(ctx, booking.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	match, err := uc.matcher.Execute(ctx, match_resource.MatchRequest{
		BusinessID:      booking.BusinessID,
		ServiceID:       booking.ServiceID,
		BookingDate:     *req.NewDate,
		StartTime:       *req.NewStartTime,
		DurationMinutes: booking.DurationMinutes,
		BufferMinutes:   rules.BufferMinutes,
		Preferences:     req.Preferences,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: resource matching failed: %v", ErrInternalService, err)
	}

	if match.Resource == nil {
		if booking.ResourceID == nil {
			return nil, match.Warnings, nil
		}
		return nil, nil, fmt.Errorf("%w: no free resource for the new slot", ErrSlotNotAvailable)
	}

	id := match.Resource.ID
	return &id, match.Warnings, nil
}

func (uc *UseCase) loadRules(ctx context.Context, businessID int64) (*domain.RuleSet, error) {
	rules, err := uc.rules.GetByBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, rulesetstore.ErrRuleSetNotFound) {
			return domain.DefaultRuleSet(businessID), nil
		}
		return nil, fmt.Errorf("%w: failed to load ruleset for business %d: %v", ErrInternalService, businessID, err)
	}
	return rules, nil
}
