package operation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
	"github.com/m04kA/SMC-ReservationEngine/pkg/psqlbuilder"
)

// Repository репозиторий журнала операций и производной истории статусов
// Журнал операций append-only: обновлений и удалений у таблицы нет
type Repository struct {
	db dbtx.DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала операций
func NewRepository(db dbtx.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись операции в журнал
// Вызывается для каждой попытки перехода, включая неуспешные
func (r *Repository) Append(ctx context.Context, op *domain.BookingOperation) (*domain.BookingOperation, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	payloadRaw, err := domain.MarshalOperationPayload(op.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: Append: %v", ErrEncodePayload, err)
	}

	resultsRaw, err := json.Marshal(op.ConstraintResults)
	if err != nil {
		return nil, fmt.Errorf("%w: Append - constraint results: %v", ErrEncodePayload, err)
	}

	violationsRaw, err := json.Marshal(op.Violations)
	if err != nil {
		return nil, fmt.Errorf("%w: Append - violations: %v", ErrEncodePayload, err)
	}

	query, args, err := psqlbuilder.Insert("booking_operations").
		Columns(
			"booking_id",
			"business_id",
			"operation_type",
			"performed_by",
			"performed_by_role",
			"prior_status",
			"new_status",
			"payload",
			"constraints_passed",
			"constraint_results",
			"violations",
			"financial_impact",
			"reference_id",
		).
		Values(
			op.BookingID,
			op.BusinessID,
			op.Type,
			op.PerformedBy,
			op.PerformedByRole,
			op.PriorStatus,
			op.NewStatus,
			payloadRaw,
			op.ConstraintsPassed,
			resultsRaw,
			violationsRaw,
			op.FinancialImpact,
			op.ReferenceID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&op.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	op.CreatedAt = createdAt.Time
	return op, nil
}

// ListByBooking получает журнал операций бронирования в хронологическом порядке
// Свёртка этой последовательности обязана давать текущий статус бронирования
func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.BookingOperation, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"business_id",
		"operation_type",
		"performed_by",
		"performed_by_role",
		"prior_status",
		"new_status",
		"payload",
		"constraints_passed",
		"constraint_results",
		"violations",
		"financial_impact",
		"reference_id",
		"created_at",
	).
		From("booking_operations").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	operations := make([]*domain.BookingOperation, 0)
	for rows.Next() {
		var op domain.BookingOperation
		var payloadRaw, resultsRaw, violationsRaw []byte
		var createdAt sql.NullTime

		err := rows.Scan(
			&op.ID,
			&op.BookingID,
			&op.BusinessID,
			&op.Type,
			&op.PerformedBy,
			&op.PerformedByRole,
			&op.PriorStatus,
			&op.NewStatus,
			&payloadRaw,
			&op.ConstraintsPassed,
			&resultsRaw,
			&violationsRaw,
			&op.FinancialImpact,
			&op.ReferenceID,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - scan row: %v", ErrScanRow, err)
		}

		op.Payload, err = domain.UnmarshalOperationPayload(payloadRaw)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByBooking - decode payload: %v", ErrScanRow, err)
		}
		if len(resultsRaw) > 0 {
			if err := json.Unmarshal(resultsRaw, &op.ConstraintResults); err != nil {
				return nil, fmt.Errorf("%w: ListByBooking - decode constraint results: %v", ErrScanRow, err)
			}
		}
		if len(violationsRaw) > 0 {
			if err := json.Unmarshal(violationsRaw, &op.Violations); err != nil {
				return nil, fmt.Errorf("%w: ListByBooking - decode violations: %v", ErrScanRow, err)
			}
		}

		op.CreatedAt = createdAt.Time
		operations = append(operations, &op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByBooking - rows error: %v", ErrScanRow, err)
	}

	return operations, nil
}

// AppendStatusHistory добавляет запись в производную историю статусов
// Пишется в одной транзакции с операцией, на которую ссылается
func (r *Repository) AppendStatusHistory(ctx context.Context, h *domain.BookingStatusHistory) (*domain.BookingStatusHistory, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_status_history").
		Columns(
			"booking_id",
			"from_status",
			"to_status",
			"reason",
			"operation_id",
		).
		Values(
			h.BookingID,
			h.FromStatus,
			h.ToStatus,
			h.Reason,
			h.OperationID,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: AppendStatusHistory - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&h.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: AppendStatusHistory - execute insert: %v", ErrExecQuery, err)
	}

	h.CreatedAt = createdAt.Time
	return h, nil
}

// ListStatusHistory получает историю статусов бронирования в хронологическом порядке
func (r *Repository) ListStatusHistory(ctx context.Context, bookingID int64) ([]*domain.BookingStatusHistory, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"from_status",
		"to_status",
		"reason",
		"operation_id",
		"created_at",
	).
		From("booking_status_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListStatusHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStatusHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]*domain.BookingStatusHistory, 0)
	for rows.Next() {
		var h domain.BookingStatusHistory
		var createdAt sql.NullTime

		err := rows.Scan(
			&h.ID,
			&h.BookingID,
			&h.FromStatus,
			&h.ToStatus,
			&h.Reason,
			&h.OperationID,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListStatusHistory - scan row: %v", ErrScanRow, err)
		}

		h.CreatedAt = createdAt.Time
		history = append(history, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListStatusHistory - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

// CreateScheduledAction записывает отложенное действие для внешнего планировщика
func (r *Repository) CreateScheduledAction(ctx context.Context, action *domain.ScheduledAction) (*domain.ScheduledAction, error) {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("scheduled_actions").
		Columns(
			"booking_id",
			"action_type",
			"execute_at",
			"payload",
		).
		Values(
			action.BookingID,
			action.Type,
			action.ExecuteAt,
			[]byte(action.Payload),
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateScheduledAction - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&action.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateScheduledAction - execute insert: %v", ErrExecQuery, err)
	}

	action.CreatedAt = createdAt.Time
	return action, nil
}

// CancelScheduledActions удаляет неисполненные отложенные действия бронирования
// Вызывается при отмене/переносе, чтобы внешний worker не прислал напоминание
// по уже неактуальному бронированию
func (r *Repository) CancelScheduledActions(ctx context.Context, bookingID int64) error {
	executor := dbtx.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("scheduled_actions").
		Where(squirrel.Eq{"booking_id": bookingID}).
		Where(squirrel.Eq{"executed_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CancelScheduledActions - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CancelScheduledActions - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}
