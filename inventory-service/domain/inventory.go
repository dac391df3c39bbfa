package domain

import (
	"context"

	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// Inventory tracks the available stock for one product code.
type Inventory struct {
	ID          models.ID
	ProductCode string
	Available   int
	Timestamps  models.Timestamps
}

// Withdraw removes quantity units from stock. It fails when the remaining
// stock would go negative.
func (i *Inventory) Withdraw(quantity int) error {
	if quantity > i.Available {
		return saga.NewValidationError("product %s is out of stock: %d requested, %d available", i.ProductCode, quantity, i.Available)
	}
	i.Available -= quantity
	i.Timestamps = i.Timestamps.Update()
	return nil
}

// Restore puts quantity units back, used during compensation.
func (i *Inventory) Restore(available int) {
	i.Available = available
	i.Timestamps = i.Timestamps.Update()
}

// OrderInventory snapshots one stock movement made for an order transaction.
// The old quantity is what compensation restores.
type OrderInventory struct {
	ID            models.ID
	OrderID       models.ID
	TransactionID string
	ProductCode   string
	OrderQuantity int
	OldQuantity   int
	NewQuantity   int
	Timestamps    models.Timestamps
}

// NewOrderInventory records a stock movement for the given order line.
func NewOrderInventory(orderID models.ID, transactionID string, inventory *Inventory, orderQuantity int) *OrderInventory {
	return &OrderInventory{
		ID:            models.GenerateUUID(),
		OrderID:       orderID,
		TransactionID: transactionID,
		ProductCode:   inventory.ProductCode,
		OrderQuantity: orderQuantity,
		OldQuantity:   inventory.Available,
		NewQuantity:   inventory.Available - orderQuantity,
		Timestamps:    models.NewTimestamps(),
	}
}

// InventoryRepository reads and writes per-product stock levels.
type InventoryRepository interface {
	FindByProductCode(ctx context.Context, code string) (*Inventory, error)
	Save(ctx context.Context, inventory *Inventory) error
}

// OrderInventoryRepository persists the stock movements of a transaction.
type OrderInventoryRepository interface {
	Save(ctx context.Context, orderInventory *OrderInventory) error
	FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) ([]*OrderInventory, error)
	ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error)
}
