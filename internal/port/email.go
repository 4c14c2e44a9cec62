package port

import (
	"context"

	"ims/internal/domain"
)

// EmailSender defines the contract for sending invoice emails.
type EmailSender interface {
	// SendInvoicePublished notifies the invoice's recipients that the
	// invoice has been published.
	SendInvoicePublished(ctx context.Context, inv *domain.Invoice) error
}
