package postgres

import (
	"context"
	"fmt"

	"balance-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ReportRepo implements ports.ReportRepository.
type ReportRepo struct {
	pool Pool
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(pool Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Create inserts a financial report within a database transaction and fills
// in the store-assigned ID.
func (r *ReportRepo) Create(ctx context.Context, tx pgx.Tx, rep *domain.FinancialReport) error {
	query := `INSERT INTO financial_reports (user_id, service_id, order_id, amount, recognized_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := tx.QueryRow(ctx, query, rep.UserID, rep.ServiceID, rep.OrderID, rep.Amount, rep.RecognizedAt).Scan(&rep.ID)
	if err != nil {
		return fmt.Errorf("insert financial report: %w", err)
	}
	return nil
}

// ListByUser fetches a user's financial reports, newest first.
func (r *ReportRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]domain.FinancialReport, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM financial_reports WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count financial reports: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, user_id, service_id, order_id, amount, recognized_at
		FROM financial_reports WHERE user_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list financial reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.FinancialReport
	for rows.Next() {
		rep := domain.FinancialReport{}
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.ServiceID, &rep.OrderID, &rep.Amount, &rep.RecognizedAt); err != nil {
			return nil, 0, fmt.Errorf("scan financial report row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate financial report rows: %w", err)
	}
	return reports, total, nil
}
