package evaluate_policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	bookingstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/booking"
	policystore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/policy"
)

// UseCase оценка действий над бронированием по версионированной политике.
// Сама политика ничего не меняет: решение применяет вызывающая сторона
type UseCase struct {
	bookings     BookingRepository
	policies     PolicyRepository
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(bookings BookingRepository, policies PolicyRepository, timeProvider TimeProvider, logger Logger) *UseCase {
	return &UseCase{
		bookings:     bookings,
		policies:     policies,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute загружает бронирование и оценивает запрошенное действие
func (uc *UseCase) Execute(ctx context.Context, req EvaluatePolicyRequest) (*EvaluatePolicyResponse, error) {
	if req.BookingID <= 0 {
		return nil, fmt.Errorf("%w: booking_id must be positive", ErrInvalidInput)
	}
	action, ok := domain.ParsePolicyAction(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
	}

	booking, err := uc.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrBookingNotFound, req.BookingID)
		}
		return nil, fmt.Errorf("%w: failed to get booking %d: %v", ErrInternalService, req.BookingID, err)
	}

	policy, decision, err := uc.Decide(ctx, booking, action, req.Emergency)
	if err != nil {
		return nil, err
	}

	return &EvaluatePolicyResponse{
		BookingID:     booking.ID,
		PolicyVersion: policy.Version,
		Decision:      *decision,
	}, nil
}

// Current возвращает действующую версию политики бизнеса
// или политику по умолчанию, если бизнес её не настраивал
func (uc *UseCase) Current(ctx context.Context, businessID int64) (*domain.BookingPolicy, error) {
	policy, err := uc.policies.GetCurrent(ctx, businessID, uc.timeProvider.Now())
	if err != nil {
		if errors.Is(err, policystore.ErrPolicyNotFound) {
			return domain.DefaultBookingPolicy(businessID), nil
		}
		return nil, fmt.Errorf("%w: failed to load policy for business %d: %v",
			ErrInternalService, businessID, err)
	}
	return policy, nil
}

// Decide оценивает действие для уже загруженного бронирования.
// Используется жизненным циклом внутри транзакции перехода
func (uc *UseCase) Decide(ctx context.Context, booking *domain.Booking, action domain.PolicyAction, emergency bool) (*domain.BookingPolicy, *domain.PolicyDecision, error) {
	now := uc.timeProvider.Now()

	policy, err := uc.Current(ctx, booking.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	var decision domain.PolicyDecision
	switch action {
	case domain.PolicyActionCancel:
		decision, err = evaluateCancellation(policy, booking, now, emergency)
		if err != nil {
			return nil, nil, err
		}
	case domain.PolicyActionReschedule:
		decision = evaluateReschedule(policy, booking, now)
	case domain.PolicyActionNoShow:
		priorNoShows, countErr := uc.countRecentNoShows(ctx, booking, policy)
		if countErr != nil {
			return nil, nil, countErr
		}
		decision = evaluateNoShow(policy, booking, now, priorNoShows)
	case domain.PolicyActionPayment:
		decision = evaluatePayment(policy, booking)
	default:
		return nil, nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	if emergency {
		uc.logger.Info("Emergency policy override applied: booking=%d, action=%s", booking.ID, action)
	}

	return policy, &decision, nil
}

func (uc *UseCase) countRecentNoShows(ctx context.Context, booking *domain.Booking, policy *domain.BookingPolicy) (int, error) {
	since := uc.timeProvider.Now().AddDate(0, 0, -policy.NoShowWindowDays)
	count, err := uc.bookings.CountNoShows(ctx, booking.BusinessID, booking.CustomerID, since)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count no-shows for customer %d: %v",
			ErrInternalService, booking.CustomerID, err)
	}
	return count, nil
}
