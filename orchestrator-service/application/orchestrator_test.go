package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
	"github.com/orchestrated/order-system/shared/saga/mocks"
)

func newTestEvent() *saga.Event {
	products := []models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	}
	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
		Products:      products,
		TotalAmount:   models.TotalAmountOf(products),
		TotalItems:    models.TotalItemsOf(products),
	}
	return saga.NewEvent(order)
}

func TestStartSaga(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	orchestrator := NewOrchestrator(saga.DefaultTable(), publisher, nil)
	event := newTestEvent()

	publisher.On("Publish", mock.Anything, saga.ChannelProductValidationExecute, event).Return(nil).Once()

	err := orchestrator.StartSaga(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourceOrchestrator, event.Source)
	assert.Equal(t, saga.StatusSuccess, event.Status)
	require.Len(t, event.History, 1)
	assert.Equal(t, "Saga started", event.History[0].Message)
	publisher.AssertExpectations(t)
}

func TestContinueSaga_ForwardsWithoutHistoryAppend(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	orchestrator := NewOrchestrator(saga.DefaultTable(), publisher, nil)

	event := newTestEvent()
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga started")
	event.Advance(saga.SourceProductValidation, saga.StatusSuccess, "products validated")

	publisher.On("Publish", mock.Anything, saga.ChannelPaymentExecute, event).Return(nil).Once()

	err := orchestrator.ContinueSaga(context.Background(), event)
	require.NoError(t, err)

	assert.Len(t, event.History, 2)
	publisher.AssertExpectations(t)
}

func TestHandleReply_TerminalSuccess(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	orchestrator := NewOrchestrator(saga.DefaultTable(), publisher, nil)

	event := newTestEvent()
	event.Advance(saga.SourceInventory, saga.StatusSuccess, "inventory updated")

	publisher.On("Publish", mock.Anything, saga.ChannelNotifyEnding, event).Return(nil).Once()

	err := orchestrator.HandleReply(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourceOrchestrator, event.Source)
	assert.Equal(t, saga.StatusSuccess, event.Status)
	assert.Equal(t, "Saga finished successfully", event.History[len(event.History)-1].Message)
	publisher.AssertExpectations(t)
}

func TestHandleReply_RollbackPendingRoutesToCompensation(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	orchestrator := NewOrchestrator(saga.DefaultTable(), publisher, nil)

	event := newTestEvent()
	event.Advance(saga.SourcePayment, saga.StatusRollbackPending, "payment not realized")

	publisher.On("Publish", mock.Anything, saga.ChannelProductValidationCompensate, event).Return(nil).Once()

	err := orchestrator.HandleReply(context.Background(), event)
	require.NoError(t, err)

	// Routing forwards unchanged, no orchestrator stamp on the way back.
	assert.Equal(t, saga.SourcePayment, event.Source)
	assert.Len(t, event.History, 1)
	publisher.AssertExpectations(t)
}

func TestHandleReply_TerminalFail(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	orchestrator := NewOrchestrator(saga.DefaultTable(), publisher, nil)

	event := newTestEvent()
	event.Advance(saga.SourceProductValidation, saga.StatusFail, "rollback executed")

	publisher.On("Publish", mock.Anything, saga.ChannelNotifyEnding, event).Return(nil).Once()

	err := orchestrator.HandleReply(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Equal(t, "Saga finished with errors", event.History[len(event.History)-1].Message)
	publisher.AssertExpectations(t)
}

func TestStartSaga_UnroutableEventPublishesNothing(t *testing.T) {
	publisher := &mocks.MockPublisher{}
	// A table without the orchestrator start row.
	table := saga.NewTable([]saga.Row{
		{Source: saga.SourcePayment, Status: saga.StatusSuccess, Next: saga.ChannelInventoryExecute},
	})
	orchestrator := NewOrchestrator(table, publisher, nil)
	event := newTestEvent()

	err := orchestrator.StartSaga(context.Background(), event)
	require.Error(t, err)
	assert.True(t, saga.IsRoutingError(err))
	assert.Empty(t, event.History)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
