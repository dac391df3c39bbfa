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

func eventWithProducts(products []models.OrderProduct) *saga.Event {
	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
		Products:      products,
	}
	event := saga.NewEvent(order)
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga started")
	event.Advance(saga.SourceProductValidation, saga.StatusSuccess, "products validated")
	return event
}

func TestRealizePayment_Success(t *testing.T) {
	repo := &mocks.MockPaymentRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRealizePayment(repo, publisher)

	event := eventWithProducts([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	repo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusPending && p.TotalAmount == 20.0 && p.TotalItems == 2
	})).Return(nil).Once()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusSuccess
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourcePayment, event.Source)
	assert.Equal(t, saga.StatusSuccess, event.Status)
	assert.Equal(t, 20.0, event.Payload.TotalAmount)
	assert.Equal(t, 2, event.Payload.TotalItems)
	assert.Equal(t, "Payment realized successfully", event.History[len(event.History)-1].Message)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRealizePayment_ZeroAmountTriggersRollbackPending(t *testing.T) {
	repo := &mocks.MockPaymentRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRealizePayment(repo, publisher)

	event := eventWithProducts([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 0.0}, Quantity: 1},
	})
	historyBefore := len(event.History)

	repo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	// The pending record is created and left as is; failure does not roll it
	// back here.
	repo.On("Save", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusPending
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourcePayment, event.Source)
	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	require.Len(t, event.History, historyBefore+1)
	assert.Contains(t, event.History[len(event.History)-1].Message, "Failed to realize payment")
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRealizePayment_DuplicateTransactionIsRejected(t *testing.T) {
	repo := &mocks.MockPaymentRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRealizePayment(repo, publisher)

	event := eventWithProducts([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	repo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(true, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	// The duplicate short-circuits before any aggregate is created; the only
	// side effect is the rollback-bound reply.
	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "already processed")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
	repo.AssertExpectations(t)
}

func TestRealizePayment_PublishesExactlyOnceOnEitherPath(t *testing.T) {
	repo := &mocks.MockPaymentRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRealizePayment(repo, publisher)

	event := eventWithProducts([]models.OrderProduct{
		{Product: models.Product{Code: "NOTEBOOK", UnitValue: 1500.0}, Quantity: 1},
	})

	repo.On("ExistsByOrderIDAndTransactionID", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil)

	require.NoError(t, uc.Execute(context.Background(), event))
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
