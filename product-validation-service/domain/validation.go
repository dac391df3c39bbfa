package domain

import (
	"context"

	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// Validation records the outcome of validating an order's products for one
// transaction.
type Validation struct {
	ID            models.ID
	OrderID       models.ID
	TransactionID string
	Success       bool
	Timestamps    models.Timestamps
}

// NewValidation creates a successful validation record for the given order
// and transaction.
func NewValidation(orderID models.ID, transactionID string) *Validation {
	return &Validation{
		ID:            models.GenerateUUID(),
		OrderID:       orderID,
		TransactionID: transactionID,
		Success:       true,
		Timestamps:    models.NewTimestamps(),
	}
}

// Invalidate flips the record to failed, used when the saga unwinds.
func (v *Validation) Invalidate() {
	v.Success = false
	v.Timestamps = v.Timestamps.Update()
}

// ValidateProducts checks that the order carries at least one line item and
// that every product code is known.
func ValidateProducts(ctx context.Context, products []models.OrderProduct, productRepository ProductRepository) error {
	if len(products) == 0 {
		return saga.NewValidationError("order has no products to validate")
	}
	for _, op := range products {
		if op.Product.Code == "" {
			return saga.NewValidationError("product code must be informed")
		}
		if op.Quantity <= 0 {
			return saga.NewValidationError("product %s has an invalid quantity", op.Product.Code)
		}
		exists, err := productRepository.ExistsByCode(ctx, op.Product.Code)
		if err != nil {
			return err
		}
		if !exists {
			return saga.NewValidationError("product %s does not exist", op.Product.Code)
		}
	}
	return nil
}

// ValidationRepository persists validation records.
type ValidationRepository interface {
	Save(ctx context.Context, validation *Validation) error
	FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (*Validation, error)
	ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error)
}

// ProductRepository reads the product catalog.
type ProductRepository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
