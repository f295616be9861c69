package validate_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessBookingsFilter) ([]*domain.Booking, error)
	CountByCustomerAndDate(ctx context.Context, businessID, customerID int64, date time.Time) (int, error)
}

// RuleSetRepository интерфейс репозитория правил бизнеса
type RuleSetRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.RuleSet, error)
}

// ConstraintRepository интерфейс репозитория каталога ограничений
type ConstraintRepository interface {
	GetCatalogByIndustry(ctx context.Context, industry string) ([]*domain.ConstraintDefinition, error)
	GetOverridesByBusiness(ctx context.Context, businessID int64) (map[int64]*domain.BusinessConstraintOverride, error)
}

// DirectoryServiceClient интерфейс клиента для DirectoryService
type DirectoryServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*directoryservice.Service, error)
	GetResources(ctx context.Context, businessID int64) ([]directoryservice.Resource, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
