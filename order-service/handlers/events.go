package handlers

import (
	"context"
	"log/slog"

	"github.com/orchestrated/order-system/order-service/application"
	"github.com/orchestrated/order-system/shared/saga"
)

// OrderEventHandlers consumes the orchestrator's ending notifications.
type OrderEventHandlers struct {
	notifyEnding *application.NotifyEnding
}

// NewOrderEventHandlers creates the inbound event handler.
func NewOrderEventHandlers(notifyEnding *application.NotifyEnding) *OrderEventHandlers {
	return &OrderEventHandlers{notifyEnding: notifyEnding}
}

// HandlerID returns the unique identifier for this event handler.
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// Handle dispatches an inbound event by channel.
func (h *OrderEventHandlers) Handle(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	switch channel {
	case saga.ChannelNotifyEnding:
		return h.notifyEnding.Execute(ctx, event)
	default:
		slog.Warn("event on unexpected channel ignored", "channel", channel, "event_id", event.ID)
		return nil
	}
}
