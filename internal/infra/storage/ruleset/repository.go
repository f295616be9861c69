package ruleset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
	"github.com/m04kA/SMC-ReservationEngine/pkg/psqlbuilder"
)

var ruleSetColumns = []string{
	"id",
	"business_id",
	"advance_booking_hours",
	"max_advance_booking_days",
	"cancellation_hours",
	"buffer_minutes",
	"allow_double_booking",
	"require_deposit",
	"deposit_amount",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с правилами бронирования бизнеса
type Repository struct {
	db dbtx.DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db dbtx.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBusiness получает активный RuleSet бизнеса
func (r *Repository) GetByBusiness(ctx context.Context, businessID int64) (*domain.RuleSet, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleSetColumns...).
		From("rulesets").
		Where(squirrel.Eq{"business_id": businessID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	var rs domain.RuleSet
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rs.ID,
		&rs.BusinessID,
		&rs.AdvanceBookingHours,
		&rs.MaxAdvanceBookingDays,
		&rs.CancellationHours,
		&rs.BufferMinutes,
		&rs.AllowDoubleBooking,
		&rs.RequireDeposit,
		&rs.DepositAmount,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRuleSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - scan ruleset: %v", ErrScanRow, err)
	}

	rs.CreatedAt = createdAt.Time
	rs.UpdatedAt = updatedAt.Time

	return &rs, nil
}

// Upsert заменяет RuleSet бизнеса целиком
// Частичного обновления нет: правила меняются одним набором, чтобы
// вычисления никогда не видели смешанную конфигурацию
func (r *Repository) Upsert(ctx context.Context, rs *domain.RuleSet) (*domain.RuleSet, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("rulesets").
		Columns(
			"business_id",
			"advance_booking_hours",
			"max_advance_booking_days",
			"cancellation_hours",
			"buffer_minutes",
			"allow_double_booking",
			"require_deposit",
			"deposit_amount",
		).
		Values(
			rs.BusinessID,
			rs.AdvanceBookingHours,
			rs.MaxAdvanceBookingDays,
			rs.CancellationHours,
			rs.BufferMinutes,
			rs.AllowDoubleBooking,
			rs.RequireDeposit,
			rs.DepositAmount,
		).
		Suffix(`ON CONFLICT (business_id) DO UPDATE SET
			advance_booking_hours = EXCLUDED.advance_booking_hours,
			max_advance_booking_days = EXCLUDED.max_advance_booking_days,
			cancellation_hours = EXCLUDED.cancellation_hours,
			buffer_minutes = EXCLUDED.buffer_minutes,
			allow_double_booking = EXCLUDED.allow_double_booking,
			require_deposit = EXCLUDED.require_deposit,
			deposit_amount = EXCLUDED.deposit_amount,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rs.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	rs.CreatedAt = createdAt.Time
	rs.UpdatedAt = updatedAt.Time

	return rs, nil
}
