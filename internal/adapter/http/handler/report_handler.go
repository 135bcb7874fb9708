package handler

import (
	"strconv"

	"balance-ledger/internal/adapter/http/dto"
	"balance-ledger/internal/adapter/http/middleware"
	"balance-ledger/internal/core/domain"
	"balance-ledger/internal/core/ports"
	"balance-ledger/pkg/apperror"
	"balance-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReportHandler handles transaction history and financial report endpoints.
type ReportHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportingSvc ports.ReportingService) *ReportHandler {
	return &ReportHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions for the authenticated
// user. Supports type, from, to, page and page_size query parameters.
func (h *ReportHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.TransactionListParams{
		UserID:   userID,
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if raw := c.Query("type"); raw != "" {
		txType := domain.TransactionType(raw)
		switch txType {
		case domain.TransactionTypeDeposit, domain.TransactionTypeReservation,
			domain.TransactionTypeRecognition, domain.TransactionTypeTransfer:
			params.Type = &txType
		default:
			response.Error(c, apperror.Validation("unknown transaction type"))
			return
		}
	}
	if from, ok := queryUnix(c, "from"); ok {
		params.From = &from
	}
	if to, ok := queryUnix(c, "to"); ok {
		params.To = &to
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.ToTransactionResponse(&txns[i]))
	}
	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: dto.TotalPages(total, params.PageSize),
	})
}

// ListReports handles GET /api/v1/reports for the authenticated user.
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	reports, total, err := h.reportingSvc.ListReports(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.ToReportResponse(&reports[i]))
	}
	response.OK(c, dto.ReportListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: dto.TotalPages(total, pageSize),
	})
}

// GetTotals handles GET /api/v1/reports/totals for the authenticated user.
func (h *ReportHandler) GetTotals(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	totals, err := h.reportingSvc.GetTotals(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TotalsResponse{
		TotalTransactions: totals.TotalTransactions,
		Deposited:         totals.Deposited.StringFixed(2),
		Reserved:          totals.Reserved.StringFixed(2),
		Recognized:        totals.Recognized.StringFixed(2),
		TransferredIn:     totals.TransferredIn.StringFixed(2),
		TransferredOut:    totals.TransferredOut.StringFixed(2),
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func queryUnix(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
