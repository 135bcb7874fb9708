package ports

import (
	"context"

	"balance-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepository defines persistence operations for balances.
// Methods accepting pgx.Tx run inside transaction blocks; GetForUpdate takes
// a row-level lock that is held until the transaction ends.
type BalanceRepository interface {
	Create(ctx context.Context, tx pgx.Tx, b *domain.Balance) error
	GetByUserID(ctx context.Context, userID int64) (*domain.Balance, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Balance, error)
	Save(ctx context.Context, tx pgx.Tx, b *domain.Balance) error
}

// TransactionRepository defines persistence for the append-only ledger log.
// There are intentionally no update or delete operations.
type TransactionRepository interface {
	// Create inserts the entry and fills in the store-assigned monotonic ID.
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetTotals(ctx context.Context, userID int64) (*LedgerTotals, error)
}

// TransactionListParams holds filter + pagination for listing ledger entries.
type TransactionListParams struct {
	UserID   int64
	Type     *domain.TransactionType
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// LedgerTotals holds per-type sums over a user's transaction log.
type LedgerTotals struct {
	TotalTransactions int64
	Deposited         decimal.Decimal
	Reserved          decimal.Decimal
	Recognized        decimal.Decimal
	TransferredIn     decimal.Decimal
	TransferredOut    decimal.Decimal // positive magnitude
}

// ReportRepository defines persistence for financial reports.
type ReportRepository interface {
	// Create inserts the report and fills in the store-assigned ID.
	Create(ctx context.Context, tx pgx.Tx, r *domain.FinancialReport) error
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]domain.FinancialReport, int64, error)
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts the user and fills in the store-assigned ID.
	Create(ctx context.Context, tx pgx.Tx, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
