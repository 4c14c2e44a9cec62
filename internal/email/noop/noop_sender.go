package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"ims/internal/domain"
	"ims/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendInvoicePublished(_ context.Context, inv *domain.Invoice) error {
	log.Info().Str("invoice", inv.Title).Str("to", inv.ToEmail).
		Strs("cc", inv.CCEmails).Msg("noop email: invoice published")
	return nil
}
