package port

import (
	"context"

	"github.com/google/uuid"

	"ims/internal/domain"
)

// InvoiceRepository persists invoice records.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	Update(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	// GetByTitle resolves an invoice by its exact title, used by the
	// form-automation ingest path to locate records by human identifier.
	GetByTitle(ctx context.Context, title string) (*domain.Invoice, error)
	// List returns invoices filtered by status ("" = all), newest first.
	List(ctx context.Context, status domain.InvoiceStatus, offset, limit int) ([]domain.Invoice, int, error)
	// CountsByStatus returns the invoice count for every status value.
	CountsByStatus(ctx context.Context) (map[domain.InvoiceStatus]int, error)
	// UpdateDerived rewrites only the five computed amount columns.
	UpdateDerived(ctx context.Context, inv *domain.Invoice) error
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// DashboardRepository serves the read-only chart aggregates.
type DashboardRepository interface {
	GetDashboard(ctx context.Context) (*domain.DashboardData, error)
}
