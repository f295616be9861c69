package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessBookingsFilter) ([]*domain.Booking, error)
}

// RuleSetRepository интерфейс репозитория правил бизнеса
type RuleSetRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.RuleSet, error)
}

// OperationRepository интерфейс журнала операций
type OperationRepository interface {
	Append(ctx context.Context, op *domain.BookingOperation) (*domain.BookingOperation, error)
	AppendStatusHistory(ctx context.Context, h *domain.BookingStatusHistory) (*domain.BookingStatusHistory, error)
	CreateScheduledAction(ctx context.Context, action *domain.ScheduledAction) (*domain.ScheduledAction, error)
}

// DirectoryServiceClient интерфейс клиента для DirectoryService
type DirectoryServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*directoryservice.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*directoryservice.Service, error)
	GetResources(ctx context.Context, businessID int64) ([]directoryservice.Resource, error)
}

// Validator интерфейс проверки бронирования против правил и каталога
type Validator interface {
	Execute(ctx context.Context, req validate_booking.ValidateBookingRequest) (*validate_booking.ValidateBookingResponse, error)
}

// Matcher интерфейс подбора ресурса
type Matcher interface {
	Execute(ctx context.Context, req match_resource.MatchRequest) (*match_resource.MatchResponse, error)
}

// TxManager интерфейс управления транзакциями
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
