package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeReservation TransactionType = "reservation"
	TransactionTypeRecognition TransactionType = "revenue_recognition"
	TransactionTypeTransfer    TransactionType = "transfer"
)

// Transaction is one immutable entry of the append-only ledger log.
// Amount is signed: positive for inflow, negative for outflow. A transfer
// produces exactly two rows with equal and opposite amounts.
//
// Note: a reservation is recorded with a positive magnitude while a
// transfer's debit leg is negative. The sign convention is inconsistent
// across types in the upstream accounting behavior and is kept as-is
// pending product clarification.
type Transaction struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      TransactionType `json:"transaction_type"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsOutflow reports whether this entry removes funds from the user's balance.
func (t *Transaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}
