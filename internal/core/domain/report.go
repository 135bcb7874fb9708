package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialReport is the accounting record produced by a revenue recognition.
// One report exists per recognition transaction, created in the same atomic
// unit of work.
type FinancialReport struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	ServiceID    int64           `json:"service_id"`
	OrderID      int64           `json:"order_id"`
	Amount       decimal.Decimal `json:"amount"`
	RecognizedAt time.Time       `json:"recognized_at"`
}
