package handler

import (
	"balance-ledger/internal/adapter/http/dto"
	"balance-ledger/internal/adapter/http/middleware"
	"balance-ledger/internal/core/ports"
	"balance-ledger/pkg/apperror"
	"balance-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles funds movement endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Deposit handles POST /api/v1/funds/deposit. Only the balance owner may
// move their own funds.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if err := requireOwner(c, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Deposit(c.Request.Context(), req.UserID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToTransactionResponse(txn))
}

// Reserve handles POST /api/v1/funds/reserve. Only the balance owner may
// move their own funds.
func (h *LedgerHandler) Reserve(c *gin.Context) {
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if err := requireOwner(c, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Reserve(c.Request.Context(), req.UserID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToTransactionResponse(txn))
}

// Recognize handles POST /api/v1/funds/recognize. Only the balance owner may
// move their own funds.
func (h *LedgerHandler) Recognize(c *gin.Context) {
	var req dto.RecognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if err := requireOwner(c, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	txn, err := h.ledgerSvc.Recognize(c.Request.Context(), ports.RecognizeRequest{
		UserID:    req.UserID,
		ServiceID: req.ServiceID,
		OrderID:   req.OrderID,
		Amount:    amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToTransactionResponse(txn))
}

// Transfer handles POST /api/v1/funds/transfer. The sender is the
// authenticated user.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	senderID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ledgerSvc.Transfer(c.Request.Context(), senderID, req.RecipientID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TransferResponse{
		Debit:  dto.ToTransactionResponse(result.Debit),
		Credit: dto.ToTransactionResponse(result.Credit),
	})
}

// requireOwner rejects requests whose target user is not the authenticated
// user.
func requireOwner(c *gin.Context, targetUserID int64) error {
	authID, ok := middleware.UserID(c)
	if !ok {
		return apperror.ErrInvalidToken()
	}
	if authID != targetUserID {
		return apperror.ErrPermissionDenied()
	}
	return nil
}

// GetBalance handles GET /api/v1/balance for the authenticated user.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.BalanceResponse{
		UserID:   balance.UserID,
		Amount:   balance.Amount.StringFixed(2),
		Reserved: balance.Reserved.StringFixed(2),
	})
}
