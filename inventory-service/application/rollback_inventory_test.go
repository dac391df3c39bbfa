package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orchestrated/order-system/inventory-service/domain"
	"github.com/orchestrated/order-system/inventory-service/mocks"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
	sagamocks "github.com/orchestrated/order-system/shared/saga/mocks"
)

func TestRollbackInventory_RestoresRecordedQuantities(t *testing.T) {
	inventoryRepo := &mocks.MockInventoryRepository{}
	movementRepo := &mocks.MockOrderInventoryRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRollbackInventory(inventoryRepo, movementRepo, publisher)

	event := paidEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	inventory := stockOf("SMARTPHONE", 3)
	movement := domain.NewOrderInventory(event.OrderID, event.TransactionID, stockOf("SMARTPHONE", 5), 2)

	movementRepo.On("FindByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return([]*domain.OrderInventory{movement}, nil).Once()
	inventoryRepo.On("FindByProductCode", mock.Anything, "SMARTPHONE").Return(inventory, nil).Once()
	inventoryRepo.On("Save", mock.Anything, mock.MatchedBy(func(i *domain.Inventory) bool {
		return i.Available == 5
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourceInventory, event.Source)
	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Equal(t, "Rollback executed on inventory", event.History[len(event.History)-1].Message)
	inventoryRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRollbackInventory_NoMovementsStillReplies(t *testing.T) {
	inventoryRepo := &mocks.MockInventoryRepository{}
	movementRepo := &mocks.MockOrderInventoryRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewRollbackInventory(inventoryRepo, movementRepo, publisher)

	event := paidEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	movementRepo.On("FindByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(nil, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusFail, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "Rollback not executed for inventory")
	inventoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
