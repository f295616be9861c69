package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
	"github.com/m04kA/SMC-ReservationEngine/pkg/txmanager"
)

// reminderLeadTime за сколько до начала отправляется напоминание
const reminderLeadTime = 24 * time.Hour

// UseCase создание бронирования
// Проверки выполняются до транзакции; внутри сериализуемой транзакции
// повторяется только проверка конфликтов по заблокированным строкам,
// затем запись бронирования и операции аудита
type UseCase struct {
	bookings     BookingRepository
	rules        RuleSetRepository
	operations   OperationRepository
	directory    DirectoryServiceClient
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
	directory DirectoryServiceClient,
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
		directory:    directory,
		validator:    validator,
		matcher:      matcher,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute создает бронирование.
// Проигранная гонка за слот повторяется один раз на свежем состоянии;
// вторая неудача возвращается как занятый слот
func (uc *UseCase) Execute(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	verdict, err := uc.validator.Execute(ctx, validate_booking.ValidateBookingRequest{
		BusinessID:      req.BusinessID,
		CustomerID:      req.CustomerID,
		ServiceID:       req.ServiceID,
		ResourceID:      req.ResourceID,
		BookingDate:     req.BookingDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return nil, uc.mapValidatorError(err)
	}
	if !verdict.Valid {
		uc.logger.Info("Booking rejected by validation: business=%d, customer=%d, violations=%d",
			req.BusinessID, req.CustomerID, len(verdict.Violations))
		return nil, &domain.ValidationError{Violations: verdict.Violations}
	}

	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryservice.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: service %d", ErrServiceNotFound, req.ServiceID)
		}
		return nil, fmt.Errorf("%w: failed to get service %d: %v", ErrInternalService, req.ServiceID, err)
	}
	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryservice.ErrBusinessNotFound) {
			return nil, fmt.Errorf("%w: business %d", ErrBusinessNotFound, req.BusinessID)
		}
		return nil, fmt.Errorf("%w: failed to get business %d: %v", ErrInternalService, req.BusinessID, err)
	}

	resp, err := uc.tryCreate(ctx, req, service, business, verdict)
	if err != nil && txmanager.IsCommitConflict(err) {
		uc.logger.Warn("Slot race lost, retrying once: business=%d, date=%s, start=%s",
			req.BusinessID, req.BookingDate, req.StartTime)
		resp, err = uc.tryCreate(ctx, req, service, business, verdict)
		if err != nil && txmanager.IsCommitConflict(err) {
			return nil, fmt.Errorf("%w: slot was taken concurrently", ErrSlotNotAvailable)
		}
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Booking created: id=%d, business=%d, customer=%d, date=%s %s",
		resp.ID, req.BusinessID, req.CustomerID, req.BookingDate, req.StartTime)
	return resp, nil
}

func (uc *UseCase) tryCreate(
	ctx context.Context,
	req CreateBookingRequest,
	service *directoryservice.Service,
	business *directoryservice.Business,
	verdict *validate_booking.ValidateBookingResponse,
) (*CreateBookingResponse, error) {
	var resp *CreateBookingResponse

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := uc.timeProvider.Now()

		rules, err := uc.loadRules(txCtx, req.BusinessID)
		if err != nil {
			return err
		}

		duration := service.DurationMinutes
		if req.DurationMinutes != nil {
			duration = *req.DurationMinutes
		}
		interval, err := domain.NewInterval(req.StartTime, duration)
		if err != nil {
			return fmt.Errorf("%w: invalid start_time", ErrInvalidInput)
		}

		bookingDate, err := time.ParseInLocation(domain.DateFormat, req.BookingDate, now.Location())
		if err != nil {
			return fmt.Errorf("%w: booking_date must be in YYYY-MM-DD format", ErrInvalidInput)
		}

		// Повторная проверка конфликтов по строкам, заблокированным FOR UPDATE:
		// состояние могло измениться после валидации
		existing, err := uc.bookings.GetByBusinessWithFilter(txCtx, domain.BusinessBookingsFilter{
			BusinessID: req.BusinessID,
			StartDate:  &bookingDate,
			EndDate:    &bookingDate,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to load bookings for %s: %v", ErrInternalService, req.BookingDate, err)
		}
		if !rules.AllowDoubleBooking && req.ResourceID == nil &&
			domain.HasConflict(interval, existing, rules.BufferMinutes, nil) {
			return fmt.Errorf("%w: requested slot conflicts with an existing booking", ErrSlotNotAvailable)
		}

		resourceID, warnings, err := uc.assignResource(txCtx, req, rules, duration)
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			BusinessID:      req.BusinessID,
			CustomerID:      req.CustomerID,
			ServiceID:       req.ServiceID,
			ResourceID:      resourceID,
			BookingDate:     bookingDate,
			StartTime:       req.StartTime,
			DurationMinutes: duration,
			Status:          domain.StatusRequested,
			ServiceName:     service.Name,
			Industry:        business.Industry,
			Notes:           req.Notes,
		}
		if service.Price != nil {
			booking.ServicePrice = *service.Price
		}
		if rules.RequireDeposit && rules.DepositAmount > 0 {
			deposit := rules.DepositAmount
			booking.DepositAmount = &deposit
		}

		created, err := uc.bookings.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternalService, err)
		}

		if err := uc.recordCreation(txCtx, created, req, verdict); err != nil {
			return err
		}
		if err := uc.scheduleReminder(txCtx, created, now); err != nil {
			return err
		}

		resp = toResponse(created, append(verdict.Warnings, warnings...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// assignResource подбирает ресурс внутри транзакции.
// Бизнес без ресурсов бронируется целиком; иначе отсутствие свободного
// ресурса означает занятый слот
func (uc *UseCase) assignResource(ctx context.Context, req CreateBookingRequest, rules *domain.RuleSet, duration int) (*int64, []domain.Violation, error) {
	match, err := uc.matcher.Execute(ctx, match_resource.MatchRequest{
		BusinessID:         req.BusinessID,
		ServiceID:          req.ServiceID,
		BookingDate:        req.BookingDate,
		StartTime:          req.StartTime,
		DurationMinutes:    duration,
		BufferMinutes:      rules.BufferMinutes,
		RequiredResourceID: req.ResourceID,
		Preferences:        req.Preferences,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: resource matching failed: %v", ErrInternalService, err)
	}

	if match.Resource == nil {
		resources, err := uc.directory.GetResources(ctx, req.BusinessID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to get resources: %v", ErrInternalService, err)
		}
		if len(resources) == 0 && req.ResourceID == nil {
			return nil, match.Warnings, nil
		}
		return nil, nil, fmt.Errorf("%w: no free resource for the requested slot", ErrSlotNotAvailable)
	}

	id := match.Resource.ID
	return &id, match.Warnings, nil
}

// recordCreation пишет операцию создания, историю статусов
func (uc *UseCase) recordCreation(ctx context.Context, booking *domain.Booking, req CreateBookingRequest, verdict *validate_booking.ValidateBookingResponse) error {
	op, err := uc.operations.Append(ctx, &domain.BookingOperation{
		BookingID:       booking.ID,
		BusinessID:      booking.BusinessID,
		Type:            domain.OperationCreate,
		PerformedBy:     req.CustomerID,
		PerformedByRole: domain.ActorCustomer,
		NewStatus:       domain.StatusRequested,
		Payload: &domain.CreatePayload{
			ServiceID:  booking.ServiceID,
			ResourceID: booking.ResourceID,
			Date:       req.BookingDate,
			StartTime:  booking.StartTime,
			Deposit:    booking.DepositAmount,
		},
		ConstraintsPassed: true,
		ConstraintResults: verdict.Results,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append create operation: %v", ErrInternalService, err)
	}

	_, err = uc.operations.AppendStatusHistory(ctx, &domain.BookingStatusHistory{
		BookingID:   booking.ID,
		ToStatus:    domain.StatusRequested,
		OperationID: op.ID,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to append status history: %v", ErrInternalService, err)
	}
	return nil
}

// scheduleReminder записывает инструкцию напоминания для внешнего worker,
// если до начала ещё есть время
func (uc *UseCase) scheduleReminder(ctx context.Context, booking *domain.Booking, now time.Time) error {
	executeAt := booking.StartsAt().Add(-reminderLeadTime)
	if !executeAt.After(now) {
		return nil
	}
	_, err := uc.operations.CreateScheduledAction(ctx, &domain.ScheduledAction{
		BookingID: booking.ID,
		Type:      domain.ScheduledReminder,
		ExecuteAt: executeAt,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to schedule reminder: %v", ErrInternalService, err)
	}
	return nil
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

func (uc *UseCase) mapValidatorError(err error) error {
	switch {
	case errors.Is(err, validate_booking.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, validate_booking.ErrBusinessNotFound):
		return fmt.Errorf("%w: %v", ErrBusinessNotFound, err)
	case errors.Is(err, validate_booking.ErrServiceNotFound):
		return fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternalService, err)
	}
}
