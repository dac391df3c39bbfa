package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// NotifyEnding consumes the orchestrator's ending notifications and stores
// the final event so status queries can see how each saga concluded.
type NotifyEnding struct {
	eventRepository domain.EventRepository
}

// NewNotifyEnding creates the use case.
func NewNotifyEnding(eventRepository domain.EventRepository) *NotifyEnding {
	return &NotifyEnding{eventRepository: eventRepository}
}

// Execute stores the final event.
func (uc *NotifyEnding) Execute(ctx context.Context, event *saga.Event) error {
	if err := uc.eventRepository.Save(ctx, event); err != nil {
		return errors.Wrap(err, "failed to save final event")
	}

	slog.Info("saga concluded",
		"order_id", event.OrderID,
		"transaction_id", event.TransactionID,
		"state", saga.StateOf(event),
	)
	return nil
}
