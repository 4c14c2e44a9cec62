package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"ims/internal/domain"
	"ims/internal/port"
)

type dashboardRepo struct {
	db *sqlx.DB
}

// NewDashboardRepo creates a new PostgreSQL-backed DashboardRepository.
func NewDashboardRepo(db *sqlx.DB) port.DashboardRepository {
	return &dashboardRepo{db: db}
}

const statusRatioQuery = `SELECT
	status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
FROM invoices
GROUP BY status
ORDER BY status`

const amountTimelineQuery = `SELECT
	to_char(invoice_date, 'YYYY-MM') AS month,
	COALESCE(SUM(basic_amount), 0) AS amount
FROM invoices
WHERE invoice_date IS NOT NULL
GROUP BY to_char(invoice_date, 'YYYY-MM')
ORDER BY month`

const countByMonthQuery = `SELECT
	to_char(invoice_date, 'YYYY-MM') AS month,
	status, COUNT(*) AS count
FROM invoices
WHERE invoice_date IS NOT NULL
GROUP BY to_char(invoice_date, 'YYYY-MM'), status
ORDER BY month, status`

const totalsQuery = `SELECT
	COUNT(*) AS total_invoices,
	COALESCE(SUM(balance_amount), 0) AS total_balance
FROM invoices`

func (r *dashboardRepo) GetDashboard(ctx context.Context) (*domain.DashboardData, error) {
	data := &domain.DashboardData{}

	if err := r.db.SelectContext(ctx, &data.StatusRatio, statusRatioQuery); err != nil {
		return nil, fmt.Errorf("dashboardRepo.GetDashboard status ratio: %w", err)
	}
	if err := r.db.SelectContext(ctx, &data.AmountTimeline, amountTimelineQuery); err != nil {
		return nil, fmt.Errorf("dashboardRepo.GetDashboard amount timeline: %w", err)
	}
	if err := r.db.SelectContext(ctx, &data.CountByMonth, countByMonthQuery); err != nil {
		return nil, fmt.Errorf("dashboardRepo.GetDashboard count by month: %w", err)
	}

	var err error
	if data.ByProject, err = r.countByColumn(ctx, "project"); err != nil {
		return nil, err
	}
	if data.ByLocation, err = r.countByColumn(ctx, "location"); err != nil {
		return nil, err
	}
	if data.ByBillCategory, err = r.countByColumn(ctx, "bill_category"); err != nil {
		return nil, err
	}

	var totals struct {
		TotalInvoices int     `db:"total_invoices"`
		TotalBalance  float64 `db:"total_balance"`
	}
	if err := r.db.GetContext(ctx, &totals, totalsQuery); err != nil {
		return nil, fmt.Errorf("dashboardRepo.GetDashboard totals: %w", err)
	}
	data.TotalInvoices = totals.TotalInvoices
	data.TotalBalance = totals.TotalBalance

	return data, nil
}

// countByColumn groups invoice counts by one classification column. The
// column name is always one of the fixed identifiers below, never user
// input.
func (r *dashboardRepo) countByColumn(ctx context.Context, column string) ([]domain.TagCount, error) {
	switch column {
	case "project", "location", "bill_category":
	default:
		return nil, fmt.Errorf("dashboardRepo.countByColumn: unknown column %q", column)
	}

	query := fmt.Sprintf(`SELECT %s AS label, COUNT(*) AS count
FROM invoices
WHERE %s <> ''
GROUP BY %s
ORDER BY count DESC, label`, column, column, column)

	var counts []domain.TagCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("dashboardRepo.countByColumn %s: %w", column, err)
	}
	return counts, nil
}
