package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orchestrated/order-system/product-validation-service/domain"
	"github.com/orchestrated/order-system/product-validation-service/mocks"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
	sagamocks "github.com/orchestrated/order-system/shared/saga/mocks"
)

func TestRollbackValidation_Success(t *testing.T) {
	validationRepo := &mocks.MockValidationRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRollbackValidation(validationRepo, publisher)

	event := startedEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})
	event.Advance(saga.SourcePayment, saga.StatusRollbackPending, "payment failed")

	validation := domain.NewValidation(event.OrderID, event.TransactionID)
	validationRepo.On("FindByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(validation, nil).Once()
	validationRepo.On("Save", mock.Anything, mock.MatchedBy(func(v *domain.Validation) bool {
		return !v.Success
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourceProductValidation, event.Source)
	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Equal(t, "Rollback executed on product validation", event.History[len(event.History)-1].Message)
	validationRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRollbackValidation_MissingRecordStillReplies(t *testing.T) {
	validationRepo := &mocks.MockValidationRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRollbackValidation(validationRepo, publisher)

	event := startedEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	validationRepo.On("FindByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(nil, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "Rollback not executed for validation")
	validationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
