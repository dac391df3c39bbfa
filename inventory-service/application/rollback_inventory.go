package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/inventory-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// RollbackInventory is the inventory participant's compensation step: it
// restores the stock levels recorded in the transaction's movement snapshots.
// The FAIL outcome is stamped up front, compensation failures are recorded in
// the history instead of escalated.
type RollbackInventory struct {
	inventoryRepository      domain.InventoryRepository
	orderInventoryRepository domain.OrderInventoryRepository
	publisher                saga.Publisher
}

// NewRollbackInventory creates the use case.
func NewRollbackInventory(inventoryRepository domain.InventoryRepository, orderInventoryRepository domain.OrderInventoryRepository, publisher saga.Publisher) *RollbackInventory {
	return &RollbackInventory{
		inventoryRepository:      inventoryRepository,
		orderInventoryRepository: orderInventoryRepository,
		publisher:                publisher,
	}
}

// Execute restores stock and replies to the orchestrator exactly once.
func (uc *RollbackInventory) Execute(ctx context.Context, event *saga.Event) error {
	event.Mark(saga.SourceInventory, saga.StatusFail)

	if err := uc.rollback(ctx, event); err != nil {
		cerr := &saga.CompensationError{Err: err}
		slog.Error("inventory rollback failed",
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", cerr,
		)
		event.AddHistory("Rollback not executed for inventory: " + err.Error())
	} else {
		event.AddHistory("Rollback executed on inventory")
	}

	return errors.Wrap(uc.publisher.Publish(ctx, saga.ChannelOrchestrator, event), "failed to publish rollback reply")
}

func (uc *RollbackInventory) rollback(ctx context.Context, event *saga.Event) error {
	movements, err := uc.orderInventoryRepository.FindByOrderIDAndTransactionID(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to find inventory movements")
	}
	if len(movements) == 0 {
		return saga.NewNotFoundError("no inventory movements for order %s and transaction %s", event.OrderID, event.TransactionID)
	}

	for _, movement := range movements {
		inventory, err := uc.inventoryRepository.FindByProductCode(ctx, movement.ProductCode)
		if err != nil {
			return errors.Wrap(err, "failed to find inventory")
		}
		if inventory == nil {
			return saga.NewNotFoundError("inventory not found for product %s", movement.ProductCode)
		}

		inventory.Restore(movement.OldQuantity)
		if err := uc.inventoryRepository.Save(ctx, inventory); err != nil {
			return errors.Wrap(err, "failed to save restored inventory")
		}
	}
	return nil
}
