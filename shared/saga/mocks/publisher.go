package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orchestrated/order-system/shared/saga"
)

// MockPublisher is a testify mock for saga.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel saga.Channel, event *saga.Event) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}
