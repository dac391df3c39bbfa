package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/product-validation-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// RollbackValidation is the validation participant's compensation step. The
// FAIL outcome is stamped up front: compensation is best effort and its
// failures are recorded in the history instead of escalated.
type RollbackValidation struct {
	validationRepository domain.ValidationRepository
	publisher            saga.Publisher
}

// NewRollbackValidation creates the use case.
func NewRollbackValidation(validationRepository domain.ValidationRepository, publisher saga.Publisher) *RollbackValidation {
	return &RollbackValidation{
		validationRepository: validationRepository,
		publisher:            publisher,
	}
}

// Execute invalidates the recorded validation and replies to the
// orchestrator exactly once.
func (uc *RollbackValidation) Execute(ctx context.Context, event *saga.Event) error {
	event.Mark(saga.SourceProductValidation, saga.StatusFail)

	if err := uc.rollback(ctx, event); err != nil {
		cerr := &saga.CompensationError{Err: err}
		slog.Error("validation rollback failed",
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", cerr,
		)
		event.AddHistory("Rollback not executed for validation: " + err.Error())
	} else {
		event.AddHistory("Rollback executed on product validation")
	}

	return errors.Wrap(uc.publisher.Publish(ctx, saga.ChannelOrchestrator, event), "failed to publish rollback reply")
}

func (uc *RollbackValidation) rollback(ctx context.Context, event *saga.Event) error {
	validation, err := uc.validationRepository.FindByOrderIDAndTransactionID(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to find validation")
	}
	if validation == nil {
		return saga.NewNotFoundError("validation not found for order %s and transaction %s", event.OrderID, event.TransactionID)
	}

	validation.Invalidate()
	return errors.Wrap(uc.validationRepository.Save(ctx, validation), "failed to save invalidated validation")
}
