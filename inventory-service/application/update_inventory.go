package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/inventory-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// UpdateInventory is the inventory participant's execute step: it guards
// against duplicate deliveries, withdraws stock for every order line and
// snapshots each movement so the withdrawal can be undone. The reply publish
// is unconditional, success and failure alike.
type UpdateInventory struct {
	inventoryRepository      domain.InventoryRepository
	orderInventoryRepository domain.OrderInventoryRepository
	publisher                saga.Publisher
}

// NewUpdateInventory creates the use case.
func NewUpdateInventory(inventoryRepository domain.InventoryRepository, orderInventoryRepository domain.OrderInventoryRepository, publisher saga.Publisher) *UpdateInventory {
	return &UpdateInventory{
		inventoryRepository:      inventoryRepository,
		orderInventoryRepository: orderInventoryRepository,
		publisher:                publisher,
	}
}

// Execute runs the inventory step and replies to the orchestrator.
func (uc *UpdateInventory) Execute(ctx context.Context, event *saga.Event) error {
	if err := uc.update(ctx, event); err != nil {
		slog.Error("inventory not updated",
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", err,
		)
		event.Advance(saga.SourceInventory, saga.StatusRollbackPending, "Failed to update inventory: "+err.Error())
	}

	return errors.Wrap(uc.publisher.Publish(ctx, saga.ChannelOrchestrator, event), "failed to publish inventory reply")
}

func (uc *UpdateInventory) update(ctx context.Context, event *saga.Event) error {
	exists, err := uc.orderInventoryRepository.ExistsByOrderIDAndTransactionID(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to check for existing inventory update")
	}
	if exists {
		return saga.NewValidationError("transaction %s was already processed for order %s", event.TransactionID, event.OrderID)
	}

	for _, line := range event.Payload.Products {
		inventory, err := uc.inventoryRepository.FindByProductCode(ctx, line.Product.Code)
		if err != nil {
			return errors.Wrap(err, "failed to find inventory")
		}
		if inventory == nil {
			return saga.NewNotFoundError("inventory not found for product %s", line.Product.Code)
		}

		// Snapshot first so the old quantity survives the withdrawal.
		movement := domain.NewOrderInventory(event.OrderID, event.TransactionID, inventory, line.Quantity)
		if err := inventory.Withdraw(line.Quantity); err != nil {
			return err
		}
		if err := uc.orderInventoryRepository.Save(ctx, movement); err != nil {
			return errors.Wrap(err, "failed to save inventory movement")
		}
		if err := uc.inventoryRepository.Save(ctx, inventory); err != nil {
			return errors.Wrap(err, "failed to save inventory")
		}
	}

	event.Advance(saga.SourceInventory, saga.StatusSuccess, "Inventory updated successfully")
	return nil
}
