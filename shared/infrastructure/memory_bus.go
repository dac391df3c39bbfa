package infrastructure

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/shared/saga"
)

var _ saga.Publisher = (*MemoryBus)(nil)

// PublishedEvent is one delivery recorded by the in-memory bus.
type PublishedEvent struct {
	Channel saga.Channel
	Event   saga.Event
}

// MemoryBus is a synchronous in-process channel bus. It serializes every
// event through JSON so handlers observe the same pass-by-value semantics as
// the real transport, and it keeps a log of deliveries for assertions. Used
// in tests and local single-process runs.
type MemoryBus struct {
	mux       sync.Mutex
	handlers  map[saga.Channel][]saga.Handler
	published []PublishedEvent
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[saga.Channel][]saga.Handler)}
}

// Subscribe registers a handler for one channel.
func (b *MemoryBus) Subscribe(channel saga.Channel, handler saga.Handler) {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.handlers[channel] = append(b.handlers[channel], handler)
}

// Publish delivers the event synchronously to every handler of the channel.
// A channel with no handlers is a valid dead end, the delivery is still
// recorded.
func (b *MemoryBus) Publish(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	b.mux.Lock()
	copied, err := saga.FromJSON(data)
	if err != nil {
		b.mux.Unlock()
		return errors.Wrap(err, "failed to copy event")
	}
	b.published = append(b.published, PublishedEvent{Channel: channel, Event: *copied})
	handlers := append([]saga.Handler(nil), b.handlers[channel]...)
	b.mux.Unlock()

	for _, handler := range handlers {
		delivered, err := saga.FromJSON(data)
		if err != nil {
			return errors.Wrap(err, "failed to copy event")
		}
		if err := handler.Handle(ctx, channel, delivered); err != nil {
			return errors.Wrapf(err, "handler %s failed on channel %s", handler.HandlerID(), channel)
		}
	}
	return nil
}

// Published returns a copy of the delivery log.
func (b *MemoryBus) Published() []PublishedEvent {
	b.mux.Lock()
	defer b.mux.Unlock()
	return append([]PublishedEvent(nil), b.published...)
}

// PublishedTo returns the deliveries recorded for one channel.
func (b *MemoryBus) PublishedTo(channel saga.Channel) []PublishedEvent {
	b.mux.Lock()
	defer b.mux.Unlock()
	var out []PublishedEvent
	for _, p := range b.published {
		if p.Channel == channel {
			out = append(out, p)
		}
	}
	return out
}
