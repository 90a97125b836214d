package realtime

import (
	"context"
	"sync"

	"pasarkerja/internal/domain/entity"
)

// EventSource is the push-based change feed of the backing store: one
// subscription per chat, delivering newly inserted messages. Delivery order
// is whatever the backend produces; consumers must re-sort and dedupe.
type EventSource interface {
	Subscribe(ctx context.Context, chatID string) (*Subscription, error)
}

// Subscription is a cancellable handle on a live channel. Close is
// idempotent and safe on a nil handle.
type Subscription struct {
	events    chan *entity.Message
	cancel    context.CancelFunc
	closeOnce sync.Once
	onClose   func()
}

// NewSubscription wires a handle around an event channel owned by the
// producer. The producer must stop sending and close events once cancel's
// context is done.
func NewSubscription(events chan *entity.Message, cancel context.CancelFunc) *Subscription {
	return &Subscription{
		events: events,
		cancel: cancel,
	}
}

// Events is the consumer side of the channel. It is closed after Close once
// the producer drains out.
func (s *Subscription) Events() <-chan *entity.Message {
	return s.events
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.onClose != nil {
			s.onClose()
		}
	})
}
