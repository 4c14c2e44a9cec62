package port

import (
	"context"

	"ims/internal/domain"
)

// EventType distinguishes the first publish of an invoice from every
// subsequent save.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
)

// Event is one webhook notification for a saved invoice. The invoice is
// the persisted record read back after the save, never the raw request.
type Event struct {
	Type    EventType
	Invoice *domain.Invoice
}

// Notifier delivers save notifications to the external automation
// service. Delivery is best-effort: implementations must never block the
// save path or surface delivery errors to it.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}
