package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orchestrated/order-system/payment-service/domain"
	"github.com/orchestrated/order-system/payment-service/mocks"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
	sagamocks "github.com/orchestrated/order-system/shared/saga/mocks"
)

func refundableEvent() *saga.Event {
	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
		Products: []models.OrderProduct{
			{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
		},
	}
	event := saga.NewEvent(order)
	event.Advance(saga.SourceInventory, saga.StatusRollbackPending, "inventory update failed")
	return event
}

func TestProcessRefund_Success(t *testing.T) {
	repo := &mocks.MockPaymentRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewProcessRefund(repo, publisher)

	event := refundableEvent()
	payment := domain.NewPayment(event.OrderID, event.TransactionID, 20.0, 2)
	payment.MarkSuccess()

	repo.On("FindByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(payment, nil).Once()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusRefund
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourcePayment, event.Source)
	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Equal(t, 20.0, event.Payload.TotalAmount)
	assert.Equal(t, 2, event.Payload.TotalItems)
	assert.Equal(t, "Rollback executed on payment", event.History[len(event.History)-1].Message)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProcessRefund_MissingPaymentStillReplies(t *testing.T) {
	repo := &mocks.MockPaymentRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewProcessRefund(repo, publisher)

	event := refundableEvent()

	repo.On("FindByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(nil, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	// Compensation failures never halt the unwind. The event still carries
	// FAIL back to the orchestrator with a record of what went wrong.
	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "Rollback not executed for payment")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
	repo.AssertExpectations(t)
}
