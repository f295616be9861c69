package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
)

// UseCase генерация сетки доступных слотов на день
type UseCase struct {
	bookings     BookingRepository
	rules        RuleSetRepository
	directory    DirectoryServiceClient
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	bookings BookingRepository,
	rules RuleSetRepository,
	directory DirectoryServiceClient,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookings:     bookings,
		rules:        rules,
		directory:    directory,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute возвращает сетку слотов на запрошенный день
func (uc *UseCase) Execute(ctx context.Context, req GetAvailableSlotsRequest) (*GetAvailableSlotsResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	date, err := time.ParseInLocation(domain.DateFormat, req.Date, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidInput)
	}

	resp := &GetAvailableSlotsResponse{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		Date:       req.Date,
		Slots:      []domain.Slot{},
	}

	// Прошедшие дни и дни за горизонтом бронирования дают пустую сетку
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return resp, nil
	}

	rules, err := uc.loadRules(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if rules.HasAdvanceLimit() && date.After(today.AddDate(0, 0, rules.MaxAdvanceBookingDays)) {
		return resp, nil
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

	resources, err := uc.directory.GetResources(ctx, req.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get resources: %v", ErrInternalService, err)
	}

	existing, err := uc.bookings.GetByBusinessWithFilter(ctx, domain.BusinessBookingsFilter{
		BusinessID: req.BusinessID,
		StartDate:  &date,
		EndDate:    &date,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load bookings for %s: %v", ErrInternalService, req.Date, err)
	}

	qualified := match_resource.Qualified(resources, service)
	if req.ResourceID != nil {
		var kept []directoryservice.Resource
		for i := range qualified {
			if qualified[i].ID == *req.ResourceID {
				kept = append(kept, qualified[i])
			}
		}
		qualified = kept
	}

	// Для сегодняшнего дня слоты внутри минимального горизонта недоступны
	minStart := 0
	earliest := now.Add(time.Duration(rules.AdvanceBookingHours) * time.Hour)
	if !earliest.Before(date) && earliest.Before(date.AddDate(0, 0, 1)) {
		minStart = earliest.Hour()*60 + earliest.Minute()
	} else if !earliest.Before(date.AddDate(0, 0, 1)) {
		return resp, nil
	}

	resp.Slots = generateSlots(generationInput{
		day:             business.WorkingHours.ForDay(date.Weekday()),
		weekday:         date.Weekday(),
		durationMinutes: service.DurationMinutes,
		bufferMinutes:   rules.BufferMinutes,
		resources:       qualified,
		rosterSize:      len(resources),
		existing:        existing,
		minStartMinutes: minStart,
		allowDouble:     rules.AllowDoubleBooking,
	})

	return resp, nil
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

func (uc *UseCase) validateRequest(req GetAvailableSlotsRequest) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service_id must be positive", ErrInvalidInput)
	}
	if req.Date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return fmt.Errorf("%w: resource_id must be positive", ErrInvalidInput)
	}
	return nil
}
