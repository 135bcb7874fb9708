package postgres

import (
	"context"
	"errors"
	"fmt"

	"balance-ledger/internal/core/domain"
	"balance-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Create inserts a new balance row within a database transaction.
func (r *BalanceRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.Balance) error {
	query := `INSERT INTO balances (user_id, amount, reserved_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, b.UserID, b.Amount, b.Reserved, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// GetByUserID fetches a balance without locking.
func (r *BalanceRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Balance, error) {
	query := `SELECT user_id, amount, reserved_amount, created_at, updated_at
		FROM balances WHERE user_id = $1`

	b := &domain.Balance{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&b.UserID, &b.Amount, &b.Reserved, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance by user id: %w", err)
	}
	return b, nil
}

// GetForUpdate fetches a balance with a pessimistic row lock. The lock is
// held until the surrounding transaction commits or rolls back, so the
// sufficient-funds check and the mutation observe a consistent snapshot.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Balance, error) {
	query := `SELECT user_id, amount, reserved_amount, created_at, updated_at
		FROM balances WHERE user_id = $1 FOR UPDATE`

	b := &domain.Balance{}
	err := tx.QueryRow(ctx, query, userID).Scan(
		&b.UserID, &b.Amount, &b.Reserved, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classifyLockError(fmt.Errorf("get balance for update: %w", err))
	}
	return b, nil
}

// Save writes a balance's amounts back within a database transaction.
func (r *BalanceRepo) Save(ctx context.Context, tx pgx.Tx, b *domain.Balance) error {
	query := `UPDATE balances SET amount = $1, reserved_amount = $2, updated_at = NOW() WHERE user_id = $3`

	tag, err := tx.Exec(ctx, query, b.Amount, b.Reserved, b.UserID)
	if err != nil {
		// The non-negativity CHECK constraints back the in-process
		// validation. A write that trips them means insufficient funds.
		if isCheckViolation(err) {
			return apperror.ErrInsufficientFunds()
		}
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance not found: user %d", b.UserID)
	}
	return nil
}
