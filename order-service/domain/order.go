package domain

import (
	"context"

	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// EventFilter selects a saga event by order or transaction. At least one
// field must be set.
type EventFilter struct {
	OrderID       models.ID
	TransactionID string
}

// Validate checks that the filter selects something.
func (f EventFilter) Validate() error {
	if f.OrderID == "" && f.TransactionID == "" {
		return saga.NewValidationError("order id or transaction id must be informed")
	}
	return nil
}

// OrderRepository persists created orders.
type OrderRepository interface {
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id models.ID) (*models.Order, error)
}

// EventRepository persists the saga events observed by the order service.
type EventRepository interface {
	Save(ctx context.Context, event *saga.Event) error
	FindLatest(ctx context.Context, filter EventFilter) (*saga.Event, error)
	FindAll(ctx context.Context) ([]*saga.Event, error)
}
