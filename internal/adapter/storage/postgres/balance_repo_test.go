package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"balance-ledger/internal/core/domain"
	"balance-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBalance(userID int64) *domain.Balance {
	return &domain.Balance{
		UserID:    userID,
		Amount:    decimal.RequireFromString("100.00"),
		Reserved:  decimal.RequireFromString("30.00"),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func balanceColumns() []string {
	return []string{"user_id", "amount", "reserved_amount", "created_at", "updated_at"}
}

func balanceRow(b *domain.Balance) *pgxmock.Rows {
	return pgxmock.NewRows(balanceColumns()).AddRow(
		b.UserID, b.Amount, b.Reserved, b.CreatedAt, b.UpdatedAt,
	)
}

func TestBalanceRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	b := newTestBalance(1)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(b.UserID, b.Amount, b.Reserved, b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	b := newTestBalance(1)

	mock.ExpectQuery("SELECT .+ FROM balances WHERE user_id").
		WithArgs(b.UserID).
		WillReturnRows(balanceRow(b))

	result, err := repo.GetByUserID(context.Background(), b.UserID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, b.UserID, result.UserID)
	assert.True(t, result.Amount.Equal(b.Amount))
	assert.True(t, result.Reserved.Equal(b.Reserved))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM balances WHERE user_id").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(balanceColumns()))

	result, err := repo.GetByUserID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	b := newTestBalance(1)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM balances WHERE user_id .+ FOR UPDATE").
		WithArgs(b.UserID).
		WillReturnRows(balanceRow(b))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, b.UserID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, b.UserID, result.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate_LockContention(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM balances WHERE user_id .+ FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: "55P03"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, 1)
	assert.Nil(t, result)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "SYS_002", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	b := newTestBalance(1)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount").
		WithArgs(b.Amount, b.Reserved, b.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Save(context.Background(), tx, b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Save_CheckViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	b := newTestBalance(1)
	b.Amount = decimal.RequireFromString("-0.01")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount").
		WithArgs(b.Amount, b.Reserved, b.UserID).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "balances_amount_check"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Save(context.Background(), tx, b)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "LED_003", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Save_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	b := newTestBalance(42)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount").
		WithArgs(b.Amount, b.Reserved, b.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Save(context.Background(), tx, b)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "balance not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
