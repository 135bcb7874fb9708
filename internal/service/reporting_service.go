package service

import (
	"context"

	"balance-ledger/internal/core/domain"
	"balance-ledger/internal/core/ports"
	"balance-ledger/pkg/apperror"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	txRepo     ports.TransactionRepository
	reportRepo ports.ReportRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(txRepo ports.TransactionRepository, reportRepo ports.ReportRepository) ports.ReportingService {
	return &reportingService{
		txRepo:     txRepo,
		reportRepo: reportRepo,
	}
}

// ListTransactions returns a paginated slice of the user's ledger log.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

// ListReports returns a paginated slice of the user's financial reports.
func (s *reportingService) ListReports(ctx context.Context, userID int64, page, pageSize int) ([]domain.FinancialReport, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	reports, total, err := s.reportRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return reports, total, nil
}

// GetTotals returns per-type sums over the user's transaction log.
func (s *reportingService) GetTotals(ctx context.Context, userID int64) (*ports.LedgerTotals, error) {
	totals, err := s.txRepo.GetTotals(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return totals, nil
}
