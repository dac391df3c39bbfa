package saga

import "context"

// Publisher sends an event to a logical channel. Implementations own delivery
// semantics; the core assumes at-least-once and fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, channel Channel, event *Event) error
}

// Handler consumes an event delivered on a channel.
type Handler interface {
	HandlerID() string
	Handle(ctx context.Context, channel Channel, event *Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	id string
	fn func(ctx context.Context, channel Channel, event *Event) error
}

// NewHandlerFunc creates a handler from a function.
func NewHandlerFunc(id string, fn func(ctx context.Context, channel Channel, event *Event) error) *HandlerFunc {
	return &HandlerFunc{id: id, fn: fn}
}

func (h *HandlerFunc) HandlerID() string {
	return h.id
}

func (h *HandlerFunc) Handle(ctx context.Context, channel Channel, event *Event) error {
	return h.fn(ctx, channel, event)
}
