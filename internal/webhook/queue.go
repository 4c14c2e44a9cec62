package webhook

import (
	"context"
	"sync"

	"ims/internal/port"
)

// Queue collects webhook events during a single save and delivers each
// invoice at most once when flushed. A save path may enqueue the same
// invoice from several code paths; only the first event for an invoice
// wins, so a create is never demoted to an update by a later enqueue.
type Queue struct {
	notifier port.Notifier

	mu      sync.Mutex
	seen    map[string]bool
	pending []port.Event
	flushed bool
}

// NewQueue creates an event queue that delivers through the given
// notifier.
func NewQueue(notifier port.Notifier) *Queue {
	return &Queue{
		notifier: notifier,
		seen:     make(map[string]bool),
	}
}

// Enqueue records an event for delivery. Events for an already-queued
// invoice, or enqueued after Flush, are dropped.
func (q *Queue) Enqueue(ev port.Event) {
	if ev.Invoice == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.flushed || q.seen[ev.Invoice.ID.String()] {
		return
	}
	q.seen[ev.Invoice.ID.String()] = true
	q.pending = append(q.pending, ev)
}

// Flush delivers all queued events. It is effective at most once; later
// calls are no-ops.
func (q *Queue) Flush(ctx context.Context) {
	q.mu.Lock()
	if q.flushed {
		q.mu.Unlock()
		return
	}
	q.flushed = true
	events := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, ev := range events {
		q.notifier.Notify(ctx, ev)
	}
}
