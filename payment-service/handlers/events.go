package handlers

import (
	"context"
	"log/slog"

	"github.com/orchestrated/order-system/payment-service/application"
	"github.com/orchestrated/order-system/shared/saga"
)

// PaymentEventHandlers consumes the payment service's inbound channels.
type PaymentEventHandlers struct {
	realizePayment *application.RealizePayment
	processRefund  *application.ProcessRefund
}

// NewPaymentEventHandlers creates the inbound event handler.
func NewPaymentEventHandlers(realizePayment *application.RealizePayment, processRefund *application.ProcessRefund) *PaymentEventHandlers {
	return &PaymentEventHandlers{
		realizePayment: realizePayment,
		processRefund:  processRefund,
	}
}

// HandlerID returns the unique identifier for this event handler.
func (h *PaymentEventHandlers) HandlerID() string {
	return "payment-service-event-handler"
}

// Handle dispatches an inbound event by channel.
func (h *PaymentEventHandlers) Handle(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	switch channel {
	case saga.ChannelPaymentExecute:
		return h.realizePayment.Execute(ctx, event)
	case saga.ChannelPaymentCompensate:
		return h.processRefund.Execute(ctx, event)
	default:
		slog.Warn("event on unexpected channel ignored", "channel", channel, "event_id", event.ID)
		return nil
	}
}
