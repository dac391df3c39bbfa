package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// FindEvent answers status queries: given an order or transaction id it
// returns the latest saga event observed for it.
type FindEvent struct {
	eventRepository domain.EventRepository
}

// NewFindEvent creates the use case.
func NewFindEvent(eventRepository domain.EventRepository) *FindEvent {
	return &FindEvent{eventRepository: eventRepository}
}

// Execute returns the latest event matching the filter.
func (uc *FindEvent) Execute(ctx context.Context, filter domain.EventFilter) (*saga.Event, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	event, err := uc.eventRepository.FindLatest(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find event")
	}
	if event == nil {
		return nil, saga.NewNotFoundError("event not found for the given filters")
	}
	return event, nil
}

// ExecuteAll returns every stored event, newest first.
func (uc *FindEvent) ExecuteAll(ctx context.Context) ([]*saga.Event, error) {
	events, err := uc.eventRepository.FindAll(ctx)
	return events, errors.Wrap(err, "failed to list events")
}
