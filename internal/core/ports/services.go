package ports

import (
	"context"
	"time"

	"balance-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// LedgerService is the balance state machine. Every operation runs as one
// atomic unit of work: balance rows are locked before the sufficient-funds
// check, and either every mutation and log entry commits or none does.
type LedgerService interface {
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error)
	Reserve(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error)
	Recognize(ctx context.Context, req RecognizeRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, senderID, recipientID int64, amount decimal.Decimal) (*TransferResult, error)
	GetBalance(ctx context.Context, userID int64) (*domain.Balance, error)
}

// RecognizeRequest holds validated input for revenue recognition.
type RecognizeRequest struct {
	UserID    int64
	ServiceID int64
	OrderID   int64
	Amount    decimal.Decimal
}

// TransferResult holds the two linked legs of a completed transfer.
type TransferResult struct {
	Debit  *domain.Transaction // sender leg, negative amount
	Credit *domain.Transaction // recipient leg, positive amount
}

// AuthService defines authentication business logic.
type AuthService interface {
	// Register creates the user together with a zero balance row.
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// ReportingService defines read-only history and reconciliation queries.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	ListReports(ctx context.Context, userID int64, page, pageSize int) ([]domain.FinancialReport, int64, error)
	GetTotals(ctx context.Context, userID int64) (*LedgerTotals, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID int64, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   int64
	Username string
}
