package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/order-service/mocks"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

func storedEvent() *saga.Event {
	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
	}
	return saga.NewEvent(order)
}

func TestFindEvent_ByOrderID(t *testing.T) {
	eventRepo := &mocks.MockEventRepository{}
	uc := NewFindEvent(eventRepo)

	stored := storedEvent()
	filter := domain.EventFilter{OrderID: stored.OrderID}
	eventRepo.On("FindLatest", mock.Anything, filter).Return(stored, nil).Once()

	event, err := uc.Execute(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, stored, event)
	eventRepo.AssertExpectations(t)
}

func TestFindEvent_EmptyFilterIsRejected(t *testing.T) {
	eventRepo := &mocks.MockEventRepository{}
	uc := NewFindEvent(eventRepo)

	_, err := uc.Execute(context.Background(), domain.EventFilter{})
	require.Error(t, err)
	assert.True(t, saga.IsValidationError(err))
	eventRepo.AssertNotCalled(t, "FindLatest", mock.Anything, mock.Anything)
}

func TestFindEvent_NotFound(t *testing.T) {
	eventRepo := &mocks.MockEventRepository{}
	uc := NewFindEvent(eventRepo)

	filter := domain.EventFilter{TransactionID: models.NewTransactionID()}
	eventRepo.On("FindLatest", mock.Anything, filter).Return(nil, nil).Once()

	_, err := uc.Execute(context.Background(), filter)
	require.Error(t, err)
	assert.True(t, saga.IsNotFoundError(err))
}

func TestNotifyEnding_StoresFinalEvent(t *testing.T) {
	eventRepo := &mocks.MockEventRepository{}
	uc := NewNotifyEnding(eventRepo)

	event := storedEvent()
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga started")
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga finished successfully")

	eventRepo.On("Save", mock.Anything, event).Return(nil).Once()

	require.NoError(t, uc.Execute(context.Background(), event))
	assert.Equal(t, saga.StateFinishedSuccess, saga.StateOf(event))
	eventRepo.AssertExpectations(t)
}
