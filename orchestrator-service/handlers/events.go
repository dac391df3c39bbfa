package handlers

import (
	"context"
	"log/slog"

	"github.com/orchestrated/order-system/orchestrator-service/application"
	"github.com/orchestrated/order-system/shared/saga"
)

// OrchestratorEventHandlers consumes the orchestrator's inbound channels:
// saga starts coming from the order service and replies coming back from the
// participants.
type OrchestratorEventHandlers struct {
	orchestrator *application.Orchestrator
}

// NewOrchestratorEventHandlers creates the inbound event handler.
func NewOrchestratorEventHandlers(orchestrator *application.Orchestrator) *OrchestratorEventHandlers {
	return &OrchestratorEventHandlers{orchestrator: orchestrator}
}

// HandlerID returns the unique identifier for this event handler.
func (h *OrchestratorEventHandlers) HandlerID() string {
	return "orchestrator-service-event-handler"
}

// Handle dispatches an inbound event by channel. A routing failure is a
// configuration defect, not a transient fault: the message is logged and
// dropped rather than redelivered with the same inputs.
func (h *OrchestratorEventHandlers) Handle(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	var err error
	switch channel {
	case saga.ChannelStartSaga:
		err = h.orchestrator.StartSaga(ctx, event)
	case saga.ChannelOrchestrator:
		err = h.orchestrator.HandleReply(ctx, event)
	default:
		slog.Warn("event on unexpected channel ignored", "channel", channel, "event_id", event.ID)
		return nil
	}

	if err != nil && (saga.IsRoutingError(err) || saga.IsValidationError(err)) {
		slog.Error("unroutable event dropped",
			"channel", channel,
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", err,
		)
		return nil
	}
	return err
}
