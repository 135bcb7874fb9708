package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"balance-ledger/internal/core/domain"
	"balance-ledger/internal/core/ports"
	"balance-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerServiceImpl implements ports.LedgerService with pessimistic locking.
// Each operation locks every balance row it touches before validating funds,
// so the check and the mutation observe the same snapshot.
type LedgerServiceImpl struct {
	balanceRepo ports.BalanceRepository
	txRepo      ports.TransactionRepository
	reportRepo  ports.ReportRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	balanceRepo ports.BalanceRepository,
	txRepo ports.TransactionRepository,
	reportRepo ports.ReportRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		balanceRepo: balanceRepo,
		txRepo:      txRepo,
		reportRepo:  reportRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Deposit credits amount to the user's available funds.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, asLedgerError(fmt.Errorf("lock balance: %w", err))
	}
	if balance == nil {
		return nil, apperror.ErrBalanceNotFound()
	}

	if err := balance.Credit(amount); err != nil {
		return nil, err
	}

	if err := s.balanceRepo.Save(ctx, dbTx, balance); err != nil {
		return nil, asLedgerError(fmt.Errorf("save balance: %w", err))
	}

	txn := &domain.Transaction{
		UserID:    userID,
		Amount:    amount,
		Type:      domain.TransactionTypeDeposit,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, asLedgerError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("amount", amount.StringFixed(2)).
		Int64("tx_id", txn.ID).
		Msg("deposit recorded")

	return txn, nil
}

// Reserve moves amount from the user's available funds into reserve.
// The reservation entry is recorded with a positive magnitude.
func (s *LedgerServiceImpl) Reserve(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, asLedgerError(fmt.Errorf("lock balance: %w", err))
	}
	if balance == nil {
		return nil, apperror.ErrBalanceNotFound()
	}

	if err := balance.Hold(amount); err != nil {
		return nil, err
	}

	if err := s.balanceRepo.Save(ctx, dbTx, balance); err != nil {
		return nil, asLedgerError(fmt.Errorf("save balance: %w", err))
	}

	txn := &domain.Transaction{
		UserID:    userID,
		Amount:    amount,
		Type:      domain.TransactionTypeReservation,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, asLedgerError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("amount", amount.StringFixed(2)).
		Str("reserved", balance.Reserved.StringFixed(2)).
		Int64("tx_id", txn.ID).
		Msg("funds reserved")

	return txn, nil
}

// Recognize releases reserved funds as realized revenue and produces a
// financial report in the same atomic unit as the ledger entry.
func (s *LedgerServiceImpl) Recognize(ctx context.Context, req ports.RecognizeRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, asLedgerError(fmt.Errorf("lock balance: %w", err))
	}
	if balance == nil {
		return nil, apperror.ErrBalanceNotFound()
	}

	if err := balance.ReleaseReserved(req.Amount); err != nil {
		return nil, err
	}

	if err := s.balanceRepo.Save(ctx, dbTx, balance); err != nil {
		return nil, asLedgerError(fmt.Errorf("save balance: %w", err))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Type:      domain.TransactionTypeRecognition,
		CreatedAt: now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("create transaction: %w", err))
	}

	report := &domain.FinancialReport{
		UserID:       req.UserID,
		ServiceID:    req.ServiceID,
		OrderID:      req.OrderID,
		Amount:       req.Amount,
		RecognizedAt: now,
	}
	if err := s.reportRepo.Create(ctx, dbTx, report); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("create financial report: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, asLedgerError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("user_id", req.UserID).
		Int64("service_id", req.ServiceID).
		Int64("order_id", req.OrderID).
		Str("amount", req.Amount.StringFixed(2)).
		Int64("tx_id", txn.ID).
		Msg("revenue recognized")

	return txn, nil
}

// Transfer moves amount between two users' available funds. Both balance
// rows are locked in ascending user-id order before the funds check, so two
// opposite-direction transfers between the same pair cannot deadlock.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, senderID, recipientID int64, amount decimal.Decimal) (*ports.TransferResult, error) {
	if senderID == recipientID {
		return nil, apperror.ErrSameUserTransfer()
	}
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	firstID, secondID := senderID, recipientID
	if recipientID < senderID {
		firstID, secondID = recipientID, senderID
	}

	first, err := s.balanceRepo.GetForUpdate(ctx, dbTx, firstID)
	if err != nil {
		return nil, asLedgerError(fmt.Errorf("lock balance %d: %w", firstID, err))
	}
	if first == nil {
		return nil, apperror.ErrBalanceNotFound()
	}
	second, err := s.balanceRepo.GetForUpdate(ctx, dbTx, secondID)
	if err != nil {
		return nil, asLedgerError(fmt.Errorf("lock balance %d: %w", secondID, err))
	}
	if second == nil {
		return nil, apperror.ErrBalanceNotFound()
	}

	sender, recipient := first, second
	if first.UserID != senderID {
		sender, recipient = second, first
	}

	if err := sender.Debit(amount); err != nil {
		return nil, err
	}
	if err := recipient.Credit(amount); err != nil {
		return nil, err
	}

	if err := s.balanceRepo.Save(ctx, dbTx, sender); err != nil {
		return nil, asLedgerError(fmt.Errorf("save sender balance: %w", err))
	}
	if err := s.balanceRepo.Save(ctx, dbTx, recipient); err != nil {
		return nil, asLedgerError(fmt.Errorf("save recipient balance: %w", err))
	}

	now := time.Now().UTC()
	debit := &domain.Transaction{
		UserID:    senderID,
		Amount:    amount.Neg(),
		Type:      domain.TransactionTypeTransfer,
		CreatedAt: now,
	}
	if err := s.txRepo.Create(ctx, dbTx, debit); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("create debit leg: %w", err))
	}
	credit := &domain.Transaction{
		UserID:    recipientID,
		Amount:    amount,
		Type:      domain.TransactionTypeTransfer,
		CreatedAt: now,
	}
	if err := s.txRepo.Create(ctx, dbTx, credit); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("create credit leg: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, asLedgerError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("sender_id", senderID).
		Int64("recipient_id", recipientID).
		Str("amount", amount.StringFixed(2)).
		Int64("debit_tx_id", debit.ID).
		Int64("credit_tx_id", credit.ID).
		Msg("transfer completed")

	return &ports.TransferResult{Debit: debit, Credit: credit}, nil
}

// GetBalance returns the user's current balance without locking.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, userID int64) (*domain.Balance, error) {
	balance, err := s.balanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get balance: %w", err))
	}
	if balance == nil {
		return nil, apperror.ErrBalanceNotFound()
	}
	return balance, nil
}

// asLedgerError keeps already-typed errors (contention, business errors)
// intact and wraps everything else as a storage fault.
func asLedgerError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.ErrStorage(err)
}
