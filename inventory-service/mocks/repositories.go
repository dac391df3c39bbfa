package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orchestrated/order-system/inventory-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// MockInventoryRepository is a testify mock for domain.InventoryRepository.
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindByProductCode(ctx context.Context, code string) (*domain.Inventory, error) {
	args := m.Called(ctx, code)
	if inventory := args.Get(0); inventory != nil {
		return inventory.(*domain.Inventory), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryRepository) Save(ctx context.Context, inventory *domain.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

// MockOrderInventoryRepository is a testify mock for
// domain.OrderInventoryRepository.
type MockOrderInventoryRepository struct {
	mock.Mock
}

func (m *MockOrderInventoryRepository) Save(ctx context.Context, orderInventory *domain.OrderInventory) error {
	args := m.Called(ctx, orderInventory)
	return args.Error(0)
}

func (m *MockOrderInventoryRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) ([]*domain.OrderInventory, error) {
	args := m.Called(ctx, orderID, transactionID)
	if movements := args.Get(0); movements != nil {
		return movements.([]*domain.OrderInventory), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderInventoryRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}
