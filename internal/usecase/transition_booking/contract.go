package transition_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/match_resource"
	"github.com/m04kA/SMC-ReservationEngine/internal/usecase/validate_booking"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Terminate(ctx context.Context, id int64, status domain.BookingStatus, reason string) error
}

// OperationRepository интерфейс журнала операций
type OperationRepository interface {
	Append(ctx context.Context, op *domain.BookingOperation) (*domain.BookingOperation, error)
	AppendStatusHistory(ctx context.Context, h *domain.BookingStatusHistory) (*domain.BookingStatusHistory, error)
	CreateScheduledAction(ctx context.Context, action *domain.ScheduledAction) (*domain.ScheduledAction, error)
	CancelScheduledActions(ctx context.Context, bookingID int64) error
}

// PolicyEngine интерфейс оценки политики отмен/переносов/неявок
type PolicyEngine interface {
	Current(ctx context.Context, businessID int64) (*domain.BookingPolicy, error)
	Decide(ctx context.Context, booking *domain.Booking, action domain.PolicyAction, emergency bool) (*domain.BookingPolicy, *domain.PolicyDecision, error)
}

// Validator интерфейс проверки нового слота при переносе
type Validator interface {
	Execute(ctx context.Context, req validate_booking.ValidateBookingRequest) (*validate_booking.ValidateBookingResponse, error)
}

// Matcher интерфейс подбора ресурса для нового слота при переносе
type Matcher interface {
	Execute(ctx context.Context, req match_resource.MatchRequest) (*match_resource.MatchResponse, error)
}

// RuleSetRepository интерфейс репозитория правил бизнеса
type RuleSetRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) (*domain.RuleSet, error)
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
