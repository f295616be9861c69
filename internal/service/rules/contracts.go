package rules

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
)

// RuleSetRepository интерфейс репозитория правил бизнеса
type RuleSetRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.RuleSet, error)
	Upsert(ctx context.Context, rs *domain.RuleSet) (*domain.RuleSet, error)
}

// ConstraintRepository интерфейс репозитория каталога ограничений
type ConstraintRepository interface {
	GetCatalogByIndustry(ctx context.Context, industry string) ([]*domain.ConstraintDefinition, error)
	GetOverridesByBusiness(ctx context.Context, businessID int64) (map[int64]*domain.BusinessConstraintOverride, error)
	UpsertOverride(ctx context.Context, override *domain.BusinessConstraintOverride) (*domain.BusinessConstraintOverride, error)
}

// PolicyRepository интерфейс репозитория политик
type PolicyRepository interface {
	GetCurrent(ctx context.Context, businessID int64, at time.Time) (*domain.BookingPolicy, error)
	Create(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error)
	CloseCurrent(ctx context.Context, businessID int64, at time.Time) error
}

// TxManager интерфейс управления транзакциями
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// DirectoryServiceClient интерфейс клиента для DirectoryService
type DirectoryServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error)
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
