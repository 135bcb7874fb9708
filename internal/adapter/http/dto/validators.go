package dto

import (
	"regexp"
	"time"

	"balance-ledger/internal/core/domain"
	"balance-ledger/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// ParseAmount parses a monetary amount from its wire form. The amount must
// be a strictly positive decimal with at most 2 fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	return amount, nil
}

// ToTransactionResponse converts a ledger entry to its wire form.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Amount:    t.Amount.StringFixed(2),
		Type:      string(t.Type),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToReportResponse converts a financial report to its wire form.
func ToReportResponse(r *domain.FinancialReport) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		ServiceID:    r.ServiceID,
		OrderID:      r.OrderID,
		Amount:       r.Amount.StringFixed(2),
		RecognizedAt: r.RecognizedAt.UTC().Format(time.RFC3339),
	}
}

// TotalPages computes the page count for a paginated response.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return int(pages)
}
