package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/apperror"
)

// fakeTx satisfies pgx.Tx for the commit/rollback surface the manager
// touches; everything else panics via the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.commits++
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rollbacks++
	return nil
}

func newFakeTxManager() (*TxManager, *[]*fakeTx) {
	var opened []*fakeTx
	m := &TxManager{maxRetries: 5}
	m.begin = func(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
		tx := &fakeTx{}
		opened = append(opened, tx)
		return tx, nil
	}
	return m, &opened
}

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func TestIsRetryableTxError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped serialization failure", fmt.Errorf("run order commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"app error", apperror.NewValidation("bad input"), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableTxError(tt.err))
		})
	}
}

func TestRunSerializable_RetriesOnSerializationFailure(t *testing.T) {
	m, opened := newFakeTxManager()

	attempts := 0
	err := m.RunSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return serializationFailure()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	// Failed attempts rolled back, the last one committed.
	require.Len(t, *opened, 3)
	for _, tx := range (*opened)[:2] {
		assert.Equal(t, 1, tx.rollbacks)
		assert.Equal(t, 0, tx.commits)
	}
	last := (*opened)[2]
	assert.Equal(t, 0, last.rollbacks)
	assert.Equal(t, 1, last.commits)
}

func TestRunSerializable_BusinessErrorSurfacesImmediately(t *testing.T) {
	m, opened := newFakeTxManager()

	attempts := 0
	err := m.RunSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return apperror.NewInsufficientStock("prod-1", 5, 2)
	})

	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, 1, attempts)
	require.Len(t, *opened, 1)
	assert.Equal(t, 1, (*opened)[0].rollbacks)
}

func TestRunSerializable_ExhaustionYieldsTransactionConflict(t *testing.T) {
	m, opened := newFakeTxManager()

	attempts := 0
	err := m.RunSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return serializationFailure()
	})

	require.Error(t, err)
	assert.True(t, apperror.IsTransactionConflict(err))
	assert.Equal(t, m.maxRetries+1, attempts)
	assert.Len(t, *opened, m.maxRetries+1)

	// The last database error stays reachable through the wrapper.
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "40001", pgErr.Code)
}

func TestRunSerializable_ReusesTransactionInContext(t *testing.T) {
	m, opened := newFakeTxManager()

	ctx := context.WithValue(context.Background(), txKey{}, &Tx{Tx: &fakeTx{}})

	ran := false
	err := m.RunSerializable(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	// No new transaction is opened inside an existing one.
	assert.Empty(t, *opened)
}
