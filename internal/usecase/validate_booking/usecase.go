package validate_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
)

// UseCase проверка бронирования против правил бизнеса и каталога ограничений.
// Ничего не создаёт и не блокирует: результат - снимок на момент проверки
type UseCase struct {
	bookings     BookingRepository
	rules        RuleSetRepository
	constraints  ConstraintRepository
	directory    DirectoryServiceClient
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	bookings BookingRepository,
	rules RuleSetRepository,
	constraints ConstraintRepository,
	directory DirectoryServiceClient,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookings:     bookings,
		rules:        rules,
		constraints:  constraints,
		directory:    directory,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute прогоняет запрос через все проверки и возвращает полный вердикт.
// Невалидное бронирование - это нормальный ответ, а не ошибка
func (uc *UseCase) Execute(ctx context.Context, req ValidateBookingRequest) (*ValidateBookingResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	rules, err := uc.loadRules(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}

	business, err := uc.directory.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, directoryservice.ErrBusinessNotFound) {
			return nil, fmt.Errorf("%w: business %d", ErrBusinessNotFound, req.BusinessID)
		}
		return nil, fmt.Errorf("%w: failed to get business %d: %v", ErrInternalService, req.BusinessID, err)
	}

	service, err := uc.directory.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryservice.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: service %d", ErrServiceNotFound, req.ServiceID)
		}
		return nil, fmt.Errorf("%w: failed to get service %d: %v", ErrInternalService, req.ServiceID, err)
	}

	duration := service.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	bookingDate, err := time.ParseInLocation(domain.DateFormat, req.BookingDate, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: booking_date must be in YYYY-MM-DD format", ErrInvalidInput)
	}

	var violations []domain.Violation

	interval, err := domain.NewInterval(req.StartTime, duration)
	intervalOK := err == nil && interval.IsValid() && interval.EndMinutes <= 24*60
	if !intervalOK {
		violations = append(violations, domain.Violation{
			Code:    domain.ViolationInvalidInterval,
			Message: "booking interval must end after it starts and fit within the day",
		})
	}

	startMinutes, err := req.StartTime.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: start_time must be in HH:MM format", ErrInvalidInput)
	}
	startsAt := bookingDate.Add(time.Duration(startMinutes) * time.Minute)

	violations = append(violations, checkAdvanceWindow(now, startsAt, rules)...)

	if intervalOK {
		day := business.WorkingHours.ForDay(bookingDate.Weekday())
		if v := checkBusinessHours(day, interval); v != nil {
			violations = append(violations, *v)
		}
	}

	facts, err := uc.collectFacts(ctx, req, service, rules, interval, intervalOK, now, startsAt, bookingDate)
	if err != nil {
		return nil, err
	}
	facts.Industry = business.Industry

	if facts.ConflictCount > 0 && !rules.AllowDoubleBooking {
		violations = append(violations, domain.Violation{
			Code:    domain.ViolationSlotConflict,
			Message: "requested slot conflicts with an existing booking",
		})
	}
	if facts.RosterSize > 0 && facts.QualifiedResourceCount == 0 {
		violations = append(violations, domain.Violation{
			Code:    domain.ViolationNoResource,
			Message: "no resource is able to provide the requested service",
		})
	}

	defs, err := uc.constraints.GetCatalogByIndustry(ctx, business.Industry)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load constraint catalog: %v", ErrInternalService, err)
	}
	overrides, err := uc.constraints.GetOverridesByBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load constraint overrides: %v", ErrInternalService, err)
	}

	results, catalogViolations, warnings := EvaluateCatalog(defs, overrides, facts)
	violations = append(violations, catalogViolations...)

	valid := len(violations) == 0
	if !valid {
		uc.logger.Info("Validation rejected booking request: business=%d, customer=%d, violations=%d",
			req.BusinessID, req.CustomerID, len(violations))
	}

	return &ValidateBookingResponse{
		Valid:      valid,
		Results:    results,
		Violations: violations,
		Warnings:   warnings,
	}, nil
}

// loadRules возвращает правила бизнеса или значения по умолчанию,
// если бизнес их не настраивал
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

// collectFacts собирает факты для вычисления ограничений одним проходом
// по хранилищу и DirectoryService
func (uc *UseCase) collectFacts(
	ctx context.Context,
	req ValidateBookingRequest,
	service *directoryservice.Service,
	rules *domain.RuleSet,
	interval domain.Interval,
	intervalOK bool,
	now, startsAt, bookingDate time.Time,
) (Facts, error) {
	facts := Facts{
		Now:                now.Unix(),
		StartsAt:           startsAt.Unix(),
		DurationMinutes:    interval.EndMinutes - interval.StartMinutes,
		AllowDoubleBooking: rules.AllowDoubleBooking,
	}

	sameDay, err := uc.bookings.CountByCustomerAndDate(ctx, req.BusinessID, req.CustomerID, bookingDate)
	if err != nil {
		return Facts{}, fmt.Errorf("%w: failed to count customer bookings: %v", ErrInternalService, err)
	}
	facts.CustomerBookingsSameDay = sameDay

	resources, err := uc.directory.GetResources(ctx, req.BusinessID)
	if err != nil {
		return Facts{}, fmt.Errorf("%w: failed to get resources: %v", ErrInternalService, err)
	}
	facts.RosterSize = len(resources)
	for i := range resources {
		if req.ResourceID != nil && resources[i].ID != *req.ResourceID {
			continue
		}
		if resources[i].CanProvide(service) {
			facts.QualifiedResourceCount++
		}
	}

	if intervalOK {
		existing, err := uc.bookings.GetByBusinessWithFilter(ctx, domain.BusinessBookingsFilter{
			BusinessID: req.BusinessID,
			StartDate:  &bookingDate,
			EndDate:    &bookingDate,
		})
		if err != nil {
			return Facts{}, fmt.Errorf("%w: failed to load bookings for %s: %v", ErrInternalService, req.BookingDate, err)
		}
		facts.ConflictCount = domain.CountConflicts(interval, existing, rules.BufferMinutes, req.ResourceID)
	}

	return facts, nil
}
