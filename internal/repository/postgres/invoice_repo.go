package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ims/internal/domain"
	"ims/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices (
		id, title, remarks,
		bill_category, project, project_mode, location,
		invoice_date, submission_date, payment_date,
		milestone_percent, gst_percent,
		basic_amount, gst_amount, total_amount, client_amount,
		retention_amount, gst_withheld, tds_amount, gst_tds_amount,
		bocw_amount, low_depth_deduction_amount, liquidated_damages_amount,
		sla_penalty_amount, penalty_amount, other_deduction_amount,
		total_deduction_amount, net_payable_amount, amount_paid, balance_amount,
		status, state, has_been_published,
		file_id, file_url, to_email, cc_emails,
		created_by, created_at, updated_at
	) VALUES (
		:id, :title, :remarks,
		:bill_category, :project, :project_mode, :location,
		:invoice_date, :submission_date, :payment_date,
		:milestone_percent, :gst_percent,
		:basic_amount, :gst_amount, :total_amount, :client_amount,
		:retention_amount, :gst_withheld, :tds_amount, :gst_tds_amount,
		:bocw_amount, :low_depth_deduction_amount, :liquidated_damages_amount,
		:sla_penalty_amount, :penalty_amount, :other_deduction_amount,
		:total_deduction_amount, :net_payable_amount, :amount_paid, :balance_amount,
		:status, :state, :has_been_published,
		:file_id, :file_url, :to_email, :cc_emails,
		:created_by, :created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	query := `UPDATE invoices SET
		title = :title, remarks = :remarks,
		bill_category = :bill_category, project = :project,
		project_mode = :project_mode, location = :location,
		invoice_date = :invoice_date, submission_date = :submission_date,
		payment_date = :payment_date,
		milestone_percent = :milestone_percent, gst_percent = :gst_percent,
		basic_amount = :basic_amount, gst_amount = :gst_amount,
		total_amount = :total_amount, client_amount = :client_amount,
		retention_amount = :retention_amount, gst_withheld = :gst_withheld,
		tds_amount = :tds_amount, gst_tds_amount = :gst_tds_amount,
		bocw_amount = :bocw_amount,
		low_depth_deduction_amount = :low_depth_deduction_amount,
		liquidated_damages_amount = :liquidated_damages_amount,
		sla_penalty_amount = :sla_penalty_amount,
		penalty_amount = :penalty_amount,
		other_deduction_amount = :other_deduction_amount,
		total_deduction_amount = :total_deduction_amount,
		net_payable_amount = :net_payable_amount,
		amount_paid = :amount_paid, balance_amount = :balance_amount,
		status = :status, state = :state,
		has_been_published = :has_been_published,
		file_id = :file_id, file_url = :file_url,
		to_email = :to_email, cc_emails = :cc_emails,
		updated_at = :updated_at
	WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByTitle(ctx context.Context, title string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		"SELECT * FROM invoices WHERE title = $1 ORDER BY created_at DESC LIMIT 1", title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByTitle: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, status domain.InvoiceStatus, offset, limit int) ([]domain.Invoice, int, error) {
	if status == "" {
		return r.listAll(ctx, offset, limit)
	}

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE status = $1", status)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices WHERE status = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) listAll(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices")
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

const statusCountsQuery = `SELECT
	COUNT(*) AS total,
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending,
	COUNT(CASE WHEN status = 'paid' THEN 1 END) AS paid,
	COUNT(CASE WHEN status = 'cancel' THEN 1 END) AS cancel,
	COUNT(CASE WHEN status = 'credit_note_issued' THEN 1 END) AS credit_note_issued
FROM invoices`

func (r *invoiceRepo) CountsByStatus(ctx context.Context) (map[domain.InvoiceStatus]int, error) {
	var row struct {
		Total            int `db:"total"`
		Pending          int `db:"pending"`
		Paid             int `db:"paid"`
		Cancel           int `db:"cancel"`
		CreditNoteIssued int `db:"credit_note_issued"`
	}
	if err := r.db.GetContext(ctx, &row, statusCountsQuery); err != nil {
		return nil, fmt.Errorf("invoiceRepo.CountsByStatus: %w", err)
	}
	return map[domain.InvoiceStatus]int{
		domain.StatusAny:              row.Total,
		domain.StatusPending:          row.Pending,
		domain.StatusPaid:             row.Paid,
		domain.StatusCancel:           row.Cancel,
		domain.StatusCreditNoteIssued: row.CreditNoteIssued,
	}, nil
}

func (r *invoiceRepo) UpdateDerived(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET
			gst_amount = $1, total_amount = $2, total_deduction_amount = $3,
			net_payable_amount = $4, balance_amount = $5, updated_at = $6
		WHERE id = $7`,
		inv.GSTAmount, inv.TotalAmount, inv.TotalDeductionAmount,
		inv.NetPayableAmount, inv.BalanceAmount, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDerived: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDerived rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
