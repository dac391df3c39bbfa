package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// MockOrderRepository is a testify mock for domain.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id models.ID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockEventRepository is a testify mock for domain.EventRepository.
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Save(ctx context.Context, event *saga.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) FindLatest(ctx context.Context, filter domain.EventFilter) (*saga.Event, error) {
	args := m.Called(ctx, filter)
	if event := args.Get(0); event != nil {
		return event.(*saga.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEventRepository) FindAll(ctx context.Context) ([]*saga.Event, error) {
	args := m.Called(ctx)
	if events := args.Get(0); events != nil {
		return events.([]*saga.Event), args.Error(1)
	}
	return nil, args.Error(1)
}
