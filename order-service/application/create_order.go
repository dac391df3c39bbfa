package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// CreateOrder accepts an order request, persists the order and kicks off its
// saga by publishing the initial event on the start channel.
type CreateOrder struct {
	orderRepository domain.OrderRepository
	eventRepository domain.EventRepository
	publisher       saga.Publisher
}

// NewCreateOrder creates the use case.
func NewCreateOrder(orderRepository domain.OrderRepository, eventRepository domain.EventRepository, publisher saga.Publisher) *CreateOrder {
	return &CreateOrder{
		orderRepository: orderRepository,
		eventRepository: eventRepository,
		publisher:       publisher,
	}
}

// Execute creates the order and returns the initial saga event.
func (uc *CreateOrder) Execute(ctx context.Context, products []models.OrderProduct) (*saga.Event, error) {
	if len(products) == 0 {
		return nil, saga.NewValidationError("order must have at least one product")
	}

	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
		Products:      products,
		CreatedAt:     time.Now(),
	}
	if err := uc.orderRepository.Save(ctx, &order); err != nil {
		return nil, errors.Wrap(err, "failed to save order")
	}

	event := saga.NewEvent(order)
	if err := uc.eventRepository.Save(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to save initial event")
	}

	if err := uc.publisher.Publish(ctx, saga.ChannelStartSaga, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish start event")
	}
	return event, nil
}
