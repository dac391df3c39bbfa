package handlers

import (
	"context"
	"log/slog"

	"github.com/orchestrated/order-system/inventory-service/application"
	"github.com/orchestrated/order-system/shared/saga"
)

// InventoryEventHandlers consumes the inventory service's inbound channels.
type InventoryEventHandlers struct {
	updateInventory   *application.UpdateInventory
	rollbackInventory *application.RollbackInventory
}

// NewInventoryEventHandlers creates the inbound event handler.
func NewInventoryEventHandlers(updateInventory *application.UpdateInventory, rollbackInventory *application.RollbackInventory) *InventoryEventHandlers {
	return &InventoryEventHandlers{
		updateInventory:   updateInventory,
		rollbackInventory: rollbackInventory,
	}
}

// HandlerID returns the unique identifier for this event handler.
func (h *InventoryEventHandlers) HandlerID() string {
	return "inventory-service-event-handler"
}

// Handle dispatches an inbound event by channel.
func (h *InventoryEventHandlers) Handle(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	switch channel {
	case saga.ChannelInventoryExecute:
		return h.updateInventory.Execute(ctx, event)
	case saga.ChannelInventoryCompensate:
		return h.rollbackInventory.Execute(ctx, event)
	default:
		slog.Warn("event on unexpected channel ignored", "channel", channel, "event_id", event.ID)
		return nil
	}
}
