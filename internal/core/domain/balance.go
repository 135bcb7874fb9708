package domain

import (
	"time"

	"balance-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Balance holds a user's available and reserved funds. One row per user.
// Both amounts are fixed-point decimals with 2 fractional digits and must
// never go negative; every mutation goes through the methods below.
type Balance struct {
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reserved  decimal.Decimal `json:"reserved_amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewBalance returns a zero balance for the given user.
func NewBalance(userID int64, now time.Time) *Balance {
	return &Balance{
		UserID:    userID,
		Amount:    decimal.Zero,
		Reserved:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Credit adds amount to available funds.
func (b *Balance) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	b.Amount = b.Amount.Add(amount)
	return nil
}

// Debit removes amount from available funds.
func (b *Balance) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if b.Amount.LessThan(amount) {
		return apperror.ErrInsufficientFunds()
	}
	b.Amount = b.Amount.Sub(amount)
	return nil
}

// Hold moves amount from available to reserved funds.
func (b *Balance) Hold(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if b.Amount.LessThan(amount) {
		return apperror.ErrInsufficientFunds()
	}
	b.Amount = b.Amount.Sub(amount)
	b.Reserved = b.Reserved.Add(amount)
	return nil
}

// ReleaseReserved removes amount from reserved funds. The funds leave the
// ledger (recognized as revenue); they are not returned to available.
func (b *Balance) ReleaseReserved(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if b.Reserved.LessThan(amount) {
		return apperror.ErrInsufficientReservedFunds()
	}
	b.Reserved = b.Reserved.Sub(amount)
	return nil
}
