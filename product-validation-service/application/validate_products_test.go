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

func startedEvent(products []models.OrderProduct) *saga.Event {
	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
		Products:      products,
	}
	event := saga.NewEvent(order)
	event.Advance(saga.SourceOrchestrator, saga.StatusSuccess, "Saga started")
	return event
}

func TestValidateProducts_Success(t *testing.T) {
	validationRepo := &mocks.MockValidationRepository{}
	productRepo := &mocks.MockProductRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewValidateProducts(validationRepo, productRepo, publisher)

	event := startedEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	validationRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	productRepo.On("ExistsByCode", mock.Anything, "SMARTPHONE").Return(true, nil).Once()
	validationRepo.On("Save", mock.Anything, mock.MatchedBy(func(v *domain.Validation) bool {
		return v.Success && v.OrderID == event.OrderID && v.TransactionID == event.TransactionID
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourceProductValidation, event.Source)
	assert.Equal(t, saga.StatusSuccess, event.Status)
	assert.Equal(t, "Products validated successfully", event.History[len(event.History)-1].Message)
	validationRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestValidateProducts_UnknownProductTriggersRollbackPending(t *testing.T) {
	validationRepo := &mocks.MockValidationRepository{}
	productRepo := &mocks.MockProductRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewValidateProducts(validationRepo, productRepo, publisher)

	event := startedEvent([]models.OrderProduct{
		{Product: models.Product{Code: "HOVERBOARD", UnitValue: 10.0}, Quantity: 1},
	})

	validationRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	productRepo.On("ExistsByCode", mock.Anything, "HOVERBOARD").Return(false, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "Failed to validate products")
	validationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertExpectations(t)
}

func TestValidateProducts_EmptyOrderTriggersRollbackPending(t *testing.T) {
	validationRepo := &mocks.MockValidationRepository{}
	productRepo := &mocks.MockProductRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewValidateProducts(validationRepo, productRepo, publisher)

	event := startedEvent(nil)

	validationRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	productRepo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything)
	publisher.AssertExpectations(t)
}

func TestValidateProducts_DuplicateTransactionIsRejected(t *testing.T) {
	validationRepo := &mocks.MockValidationRepository{}
	productRepo := &mocks.MockProductRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewValidateProducts(validationRepo, productRepo, publisher)

	event := startedEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	validationRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(true, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "already processed")
	validationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
