package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationEngine/pkg/dbtx"
)

type fakeTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (f *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (f *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (f *fakeTx) Commit() error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback() error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
	lastOpts *sql.TxOptions
}

func (f *fakeBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbtx.TxExecutor, error) {
	f.lastOpts = opts
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestDoSerializable_CommitSerializationFailureIsClassified(t *testing.T) {
	// Ошибка сериализации на коммите должна оставаться в цепочке,
	// иначе вызывающий код не сможет повторить попытку
	tx := &fakeTx{commitErr: &pq.Error{Code: pq.ErrorCode(pqSerializationFailure)}}
	m := NewTransactionManager(&fakeBeginner{tx: tx})

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommitTx)
	assert.True(t, IsCommitConflict(err))
	assert.True(t, tx.rolledBack)
}

func TestDoSerializable_UsesSerializableIsolation(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbtx.IsInTransaction(ctx))
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, beginner.lastOpts)
	assert.Equal(t, sql.LevelSerializable, beginner.lastOpts.Isolation)
	assert.True(t, beginner.tx.committed)
}

func TestDo_FnErrorRollsBackWithoutCommit(t *testing.T) {
	tx := &fakeTx{}
	m := NewTransactionManager(&fakeBeginner{tx: tx})

	wantErr := errors.New("usecase failed")
	err := m.Do(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestDo_BeginError(t *testing.T) {
	m := NewTransactionManager(&fakeBeginner{beginErr: errors.New("pool exhausted")})

	err := m.Do(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBeginTx)
}

func TestIsCommitConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "serialization failure",
			err:  &pq.Error{Code: pq.ErrorCode(pqSerializationFailure)},
			want: true,
		},
		{
			name: "deadlock",
			err:  &pq.Error{Code: pq.ErrorCode(pqDeadlockDetected)},
			want: true,
		},
		{
			name: "unique violation",
			err:  &pq.Error{Code: pq.ErrorCode(pqUniqueViolation)},
			want: true,
		},
		{
			name: "other pq error",
			err:  &pq.Error{Code: "23503"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCommitConflict(tt.err))
		})
	}
}
