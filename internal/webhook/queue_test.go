package webhook

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ims/internal/domain"
	"ims/internal/port"
)

type recordingNotifier struct {
	events []port.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev port.Event) {
	r.events = append(r.events, ev)
}

func TestQueue_DedupesByInvoice(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n)

	inv := &domain.Invoice{ID: uuid.New(), Title: "INV-1"}
	q.Enqueue(port.Event{Type: port.EventCreated, Invoice: inv})
	q.Enqueue(port.Event{Type: port.EventUpdated, Invoice: inv})
	q.Flush(context.Background())

	assert.Len(t, n.events, 1)
	assert.Equal(t, port.EventCreated, n.events[0].Type)
}

func TestQueue_FlushOnce(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n)

	inv := &domain.Invoice{ID: uuid.New()}
	q.Enqueue(port.Event{Type: port.EventCreated, Invoice: inv})
	q.Flush(context.Background())
	q.Flush(context.Background())

	assert.Len(t, n.events, 1)
}

func TestQueue_EnqueueAfterFlushDropped(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n)

	q.Flush(context.Background())
	q.Enqueue(port.Event{Type: port.EventCreated, Invoice: &domain.Invoice{ID: uuid.New()}})
	q.Flush(context.Background())

	assert.Empty(t, n.events)
}

func TestQueue_DistinctInvoicesAllDelivered(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n)

	q.Enqueue(port.Event{Type: port.EventCreated, Invoice: &domain.Invoice{ID: uuid.New()}})
	q.Enqueue(port.Event{Type: port.EventUpdated, Invoice: &domain.Invoice{ID: uuid.New()}})
	q.Flush(context.Background())

	assert.Len(t, n.events, 2)
}

func TestQueue_NilInvoiceIgnored(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n)

	q.Enqueue(port.Event{Type: port.EventCreated})
	q.Flush(context.Background())

	assert.Empty(t, n.events)
}
