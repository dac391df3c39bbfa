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

func paidEvent(products []models.OrderProduct) *saga.Event {
	order := models.Order{
		ID:            models.GenerateUUID(),
		TransactionID: models.NewTransactionID(),
		Products:      products,
		TotalAmount:   models.TotalAmountOf(products),
		TotalItems:    models.TotalItemsOf(products),
	}
	event := saga.NewEvent(order)
	event.Advance(saga.SourcePayment, saga.StatusSuccess, "Payment realized successfully")
	return event
}

func stockOf(code string, available int) *domain.Inventory {
	return &domain.Inventory{
		ID:          models.GenerateUUID(),
		ProductCode: code,
		Available:   available,
		Timestamps:  models.NewTimestamps(),
	}
}

func TestUpdateInventory_Success(t *testing.T) {
	inventoryRepo := &mocks.MockInventoryRepository{}
	movementRepo := &mocks.MockOrderInventoryRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewUpdateInventory(inventoryRepo, movementRepo, publisher)

	event := paidEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	movementRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	inventoryRepo.On("FindByProductCode", mock.Anything, "SMARTPHONE").Return(stockOf("SMARTPHONE", 5), nil).Once()
	movementRepo.On("Save", mock.Anything, mock.MatchedBy(func(m *domain.OrderInventory) bool {
		return m.OldQuantity == 5 && m.NewQuantity == 3 && m.OrderQuantity == 2
	})).Return(nil).Once()
	inventoryRepo.On("Save", mock.Anything, mock.MatchedBy(func(i *domain.Inventory) bool {
		return i.Available == 3
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.SourceInventory, event.Source)
	assert.Equal(t, saga.StatusSuccess, event.Status)
	assert.Equal(t, "Inventory updated successfully", event.History[len(event.History)-1].Message)
	inventoryRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestUpdateInventory_OutOfStockTriggersRollbackPending(t *testing.T) {
	inventoryRepo := &mocks.MockInventoryRepository{}
	movementRepo := &mocks.MockOrderInventoryRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewUpdateInventory(inventoryRepo, movementRepo, publisher)

	event := paidEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 10},
	})

	movementRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(false, nil).Once()
	inventoryRepo.On("FindByProductCode", mock.Anything, "SMARTPHONE").Return(stockOf("SMARTPHONE", 5), nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	assert.Contains(t, event.History[len(event.History)-1].Message, "Failed to update inventory")
	inventoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	publisher.AssertExpectations(t)
}

func TestUpdateInventory_DuplicateTransactionIsRejected(t *testing.T) {
	inventoryRepo := &mocks.MockInventoryRepository{}
	movementRepo := &mocks.MockOrderInventoryRepository{}
	publisher := &sagamocks.MockPublisher{}
	uc := NewUpdateInventory(inventoryRepo, movementRepo, publisher)

	event := paidEvent([]models.OrderProduct{
		{Product: models.Product{Code: "SMARTPHONE", UnitValue: 10.0}, Quantity: 2},
	})

	movementRepo.On("ExistsByOrderIDAndTransactionID", mock.Anything, event.OrderID, event.TransactionID).Return(true, nil).Once()
	publisher.On("Publish", mock.Anything, saga.ChannelOrchestrator, event).Return(nil).Once()

	err := uc.Execute(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, saga.StatusRollbackPending, event.Status)
	inventoryRepo.AssertNotCalled(t, "FindByProductCode", mock.Anything, mock.Anything)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}
