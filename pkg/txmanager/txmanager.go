package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
)

var (
	// ErrBeginTx возвращается при ошибке начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается при ошибке коммита транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// Коды ошибок Postgres, означающие проигранную гонку за слот:
// 40001 - serialization_failure, 40P01 - deadlock_detected, 23505 - unique_violation
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqUniqueViolation      = "23505"
)

// TransactionManager управляет транзакциями через контекст
// Использует dbtx для передачи активной транзакции в репозитории
type TransactionManager struct {
	db dbtx.TxBeginner
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db dbtx.TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет функцию в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

// DoSerializable выполняет функцию в сериализуемой транзакции
// Используется для check-then-commit сценариев (создание бронирования)
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет функцию в read-only транзакции
// Гарантирует консистентный снимок данных для нескольких чтений
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	txCtx := dbtx.WithTransaction(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		// Причина оборачивается через %w: IsCommitConflict должен видеть
		// исходную ошибку драйвера в цепочке
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsCommitConflict проверяет, что ошибка означает проигранную гонку:
// serialization failure, deadlock или нарушение уникальности при коммите.
// Вызывающий код может один раз повторить валидацию на свежем состоянии
func IsCommitConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pqSerializationFailure, pqDeadlockDetected, pqUniqueViolation:
		return true
	}
	return false
}
