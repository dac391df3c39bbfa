package handlers

import (
	"context"
	"log/slog"

	"github.com/orchestrated/order-system/product-validation-service/application"
	"github.com/orchestrated/order-system/shared/saga"
)

// ValidationEventHandlers consumes the validation service's inbound channels.
type ValidationEventHandlers struct {
	validateProducts   *application.ValidateProducts
	rollbackValidation *application.RollbackValidation
}

// NewValidationEventHandlers creates the inbound event handler.
func NewValidationEventHandlers(validateProducts *application.ValidateProducts, rollbackValidation *application.RollbackValidation) *ValidationEventHandlers {
	return &ValidationEventHandlers{
		validateProducts:   validateProducts,
		rollbackValidation: rollbackValidation,
	}
}

// HandlerID returns the unique identifier for this event handler.
func (h *ValidationEventHandlers) HandlerID() string {
	return "product-validation-service-event-handler"
}

// Handle dispatches an inbound event by channel.
func (h *ValidationEventHandlers) Handle(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	switch channel {
	case saga.ChannelProductValidationExecute:
		return h.validateProducts.Execute(ctx, event)
	case saga.ChannelProductValidationCompensate:
		return h.rollbackValidation.Execute(ctx, event)
	default:
		slog.Warn("event on unexpected channel ignored", "channel", channel, "event_id", event.ID)
		return nil
	}
}
