package policy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
	"github.com/m04kA/SMC-ReservationEngine/pkg/psqlbuilder"
)

var policyColumns = []string{
	"id",
	"business_id",
	"version",
	"effective_from",
	"effective_to",
	"free_cancellation_hours",
	"cancellation_fee_flat",
	"cancellation_fee_percent",
	"max_reschedules",
	"reschedule_allowed_until_hours",
	"reschedule_fee_flat",
	"no_show_grace_minutes",
	"no_show_fee_percent",
	"no_show_block_after",
	"no_show_window_days",
	"no_show_block_days",
	"deposit_percent",
	"created_at",
	"updated_at",
}

// Repository репозиторий версионированных политик бронирования
type Repository struct {
	db dbtx.DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db dbtx.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCurrent получает версию политики бизнеса, действующую в момент at
// Версии не пересекаются по периодам действия, поэтому результат однозначен
func (r *Repository) GetCurrent(ctx context.Context, businessID int64, at time.Time) (*domain.BookingPolicy, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(policyColumns...).
		From("booking_policies").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.LtOrEq{"effective_from": at}).
		Where(squirrel.Or{
			squirrel.Eq{"effective_to": nil},
			squirrel.Gt{"effective_to": at},
		}).
		OrderBy("version DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCurrent - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanPolicy(executor.QueryRowContext(ctx, query, args...), "GetCurrent")
}

// Create создает новую версию политики
// Предыдущая текущая версия должна быть закрыта (effective_to) вызывающим кодом
// в той же транзакции
func (r *Repository) Create(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_policies").
		Columns(
			"business_id",
			"version",
			"effective_from",
			"effective_to",
			"free_cancellation_hours",
			"cancellation_fee_flat",
			"cancellation_fee_percent",
			"max_reschedules",
			"reschedule_allowed_until_hours",
			"reschedule_fee_flat",
			"no_show_grace_minutes",
			"no_show_fee_percent",
			"no_show_block_after",
			"no_show_window_days",
			"no_show_block_days",
			"deposit_percent",
		).
		Values(
			p.BusinessID,
			p.Version,
			p.EffectiveFrom,
			p.EffectiveTo,
			p.FreeCancellationHours,
			p.CancellationFeeFlat,
			p.CancellationFeePercent,
			p.MaxReschedules,
			p.RescheduleAllowedUntilHours,
			p.RescheduleFeeFlat,
			p.NoShowGraceMinutes,
			p.NoShowFeePercent,
			p.NoShowBlockAfter,
			p.NoShowWindowDays,
			p.NoShowBlockDays,
			p.DepositPercent,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// CloseCurrent закрывает текущую версию политики моментом at
func (r *Repository) CloseCurrent(ctx context.Context, businessID int64, at time.Time) error {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_policies").
		Set("effective_to", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"business_id": businessID, "effective_to": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CloseCurrent - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CloseCurrent - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanPolicy(row rowScanner, op string) (*domain.BookingPolicy, error) {
	var p domain.BookingPolicy
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.BusinessID,
		&p.Version,
		&p.EffectiveFrom,
		&p.EffectiveTo,
		&p.FreeCancellationHours,
		&p.CancellationFeeFlat,
		&p.CancellationFeePercent,
		&p.MaxReschedules,
		&p.RescheduleAllowedUntilHours,
		&p.RescheduleFeeFlat,
		&p.NoShowGraceMinutes,
		&p.NoShowFeePercent,
		&p.NoShowBlockAfter,
		&p.NoShowWindowDays,
		&p.NoShowBlockDays,
		&p.DepositPercent,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan policy: %v", ErrScanRow, op, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
