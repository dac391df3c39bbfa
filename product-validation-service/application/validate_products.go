package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/product-validation-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// ValidateProducts is the validation participant's execute step: it guards
// against duplicate deliveries, checks every order line against the product
// catalog and records the outcome. The reply publish is unconditional,
// success and failure alike.
type ValidateProducts struct {
	validationRepository domain.ValidationRepository
	productRepository    domain.ProductRepository
	publisher            saga.Publisher
}

// NewValidateProducts creates the use case.
func NewValidateProducts(validationRepository domain.ValidationRepository, productRepository domain.ProductRepository, publisher saga.Publisher) *ValidateProducts {
	return &ValidateProducts{
		validationRepository: validationRepository,
		productRepository:    productRepository,
		publisher:            publisher,
	}
}

// Execute runs the validation step and replies to the orchestrator.
func (uc *ValidateProducts) Execute(ctx context.Context, event *saga.Event) error {
	if err := uc.validate(ctx, event); err != nil {
		slog.Error("products not validated",
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", err,
		)
		event.Advance(saga.SourceProductValidation, saga.StatusRollbackPending, "Failed to validate products: "+err.Error())
	}

	return errors.Wrap(uc.publisher.Publish(ctx, saga.ChannelOrchestrator, event), "failed to publish validation reply")
}

func (uc *ValidateProducts) validate(ctx context.Context, event *saga.Event) error {
	exists, err := uc.validationRepository.ExistsByOrderIDAndTransactionID(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to check for existing validation")
	}
	if exists {
		return saga.NewValidationError("transaction %s was already processed for order %s", event.TransactionID, event.OrderID)
	}

	if err := domain.ValidateProducts(ctx, event.Payload.Products, uc.productRepository); err != nil {
		return err
	}

	validation := domain.NewValidation(event.OrderID, event.TransactionID)
	if err := uc.validationRepository.Save(ctx, validation); err != nil {
		return errors.Wrap(err, "failed to save validation")
	}

	event.Advance(saga.SourceProductValidation, saga.StatusSuccess, "Products validated successfully")
	return nil
}
