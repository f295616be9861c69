package match_resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
)

// UseCase подбор ресурса под бронирование
type UseCase struct {
	bookings  BookingRepository
	directory DirectoryServiceClient
	logger    Logger
}

func NewUseCase(bookings BookingRepository, directory DirectoryServiceClient, logger Logger) *UseCase {
	return &UseCase{
		bookings:  bookings,
		directory: directory,
		logger:    logger,
	}
}

// Execute подбирает лучший свободный ресурс для интервала.
// Пустой результат означает отсутствие свободной ёмкости, не ошибку
func (uc *UseCase) Execute(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
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

	bookingDate, err := time.Parse(domain.DateFormat, req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: booking_date must be in YYYY-MM-DD format", ErrInvalidInput)
	}
	interval, err := domain.NewInterval(req.StartTime, req.DurationMinutes)
	if err != nil || !interval.IsValid() {
		return nil, fmt.Errorf("%w: invalid booking interval", ErrInvalidInput)
	}

	existing, err := uc.bookings.GetByBusinessWithFilter(ctx, domain.BusinessBookingsFilter{
		BusinessID: req.BusinessID,
		StartDate:  &bookingDate,
		EndDate:    &bookingDate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load bookings for %s: %v", ErrInternalService, req.BookingDate, err)
	}

	candidates := Qualified(resources, service)
	if req.RequiredResourceID != nil {
		candidates = keepOnly(candidates, *req.RequiredResourceID)
	}

	candidates, dropped := FilterByPreferences(candidates, req.Preferences)

	var free []directoryservice.Resource
	for i := range candidates {
		if !WorksDuring(candidates[i], bookingDate.Weekday(), interval) {
			continue
		}
		if !IsFree(candidates[i], existing, interval, req.BufferMinutes) {
			continue
		}
		free = append(free, candidates[i])
	}

	resp := &MatchResponse{
		Candidates:         free,
		PreferencesDropped: dropped,
	}
	if dropped {
		uc.logger.Warn("No resource matched preferences for business %d, preferences ignored", req.BusinessID)
		resp.Warnings = append(resp.Warnings, domain.Violation{
			Code:    domain.ViolationPreferenceDrop,
			Message: "no resource matched the requested preferences, they were ignored",
		})
	}

	if len(free) == 0 {
		return resp, nil
	}

	Rank(free, service, existing)
	resp.Resource = &free[0]
	return resp, nil
}

func (uc *UseCase) validateRequest(req MatchRequest) error {
	if req.BusinessID <= 0 {
		return fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service_id must be positive", ErrInvalidInput)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes must be positive", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: start_time must be in HH:MM format", ErrInvalidInput)
	}
	return nil
}

func keepOnly(resources []directoryservice.Resource, id int64) []directoryservice.Resource {
	for i := range resources {
		if resources[i].ID == id {
			return resources[i : i+1]
		}
	}
	return nil
}
