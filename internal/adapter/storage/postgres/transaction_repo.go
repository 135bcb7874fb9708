package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"balance-ledger/internal/core/domain"
	"balance-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The transactions
// table is append-only; this repo exposes no update or delete.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a ledger entry within a database transaction and fills in
// the store-assigned monotonic ID.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, amount, transaction_type, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	err := tx.QueryRow(ctx, query, t.UserID, t.Amount, t.Type, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a single ledger entry.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT id, user_id, amount, transaction_type, created_at
		FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// List fetches ledger entries with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, user_id, amount, transaction_type, created_at
		FROM transactions %s ORDER BY id DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetTotals aggregates per-type sums over a user's transaction log.
// Transfer legs are split on the sign of the recorded amount.
func (r *TransactionRepo) GetTotals(ctx context.Context, userID int64) (*ports.LedgerTotals, error) {
	query := `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'deposit'), 0) AS deposited,
		COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'reservation'), 0) AS reserved,
		COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'revenue_recognition'), 0) AS recognized,
		COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'transfer' AND amount > 0), 0) AS transferred_in,
		COALESCE(SUM(-amount) FILTER (WHERE transaction_type = 'transfer' AND amount < 0), 0) AS transferred_out
		FROM transactions WHERE user_id = $1`

	totals := &ports.LedgerTotals{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&totals.TotalTransactions, &totals.Deposited, &totals.Reserved,
		&totals.Recognized, &totals.TransferredIn, &totals.TransferredOut,
	)
	if err != nil {
		return nil, fmt.Errorf("get ledger totals: %w", err)
	}
	return totals, nil
}
