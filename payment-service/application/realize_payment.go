package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/payment-service/domain"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// RealizePayment is the payment participant's execute step: it guards against
// duplicate deliveries, records a pending payment, enforces the minimum
// amount and reports the outcome back to the orchestrator. The reply publish
// is unconditional, success and failure alike.
type RealizePayment struct {
	paymentRepository domain.PaymentRepository
	publisher         saga.Publisher
}

// NewRealizePayment creates the use case.
func NewRealizePayment(paymentRepository domain.PaymentRepository, publisher saga.Publisher) *RealizePayment {
	return &RealizePayment{
		paymentRepository: paymentRepository,
		publisher:         publisher,
	}
}

// Execute runs the payment step and replies to the orchestrator.
func (uc *RealizePayment) Execute(ctx context.Context, event *saga.Event) error {
	if err := uc.realize(ctx, event); err != nil {
		slog.Error("payment not realized",
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", err,
		)
		event.Advance(saga.SourcePayment, saga.StatusRollbackPending, "Failed to realize payment: "+err.Error())
	}

	return errors.Wrap(uc.publisher.Publish(ctx, saga.ChannelOrchestrator, event), "failed to publish payment reply")
}

func (uc *RealizePayment) realize(ctx context.Context, event *saga.Event) error {
	exists, err := uc.paymentRepository.ExistsByOrderIDAndTransactionID(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to check for existing payment")
	}
	if exists {
		return saga.NewValidationError("transaction %s was already processed for order %s", event.TransactionID, event.OrderID)
	}

	totalAmount := models.TotalAmountOf(event.Payload.Products)
	totalItems := models.TotalItemsOf(event.Payload.Products)

	payment := domain.NewPayment(event.OrderID, event.TransactionID, totalAmount, totalItems)
	if err := uc.paymentRepository.Save(ctx, payment); err != nil {
		return errors.Wrap(err, "failed to save pending payment")
	}

	if err := domain.ValidateAmount(totalAmount); err != nil {
		return err
	}

	payment.MarkSuccess()
	if err := uc.paymentRepository.Save(ctx, payment); err != nil {
		return errors.Wrap(err, "failed to save successful payment")
	}

	event.Payload.TotalAmount = totalAmount
	event.Payload.TotalItems = totalItems
	event.Advance(saga.SourcePayment, saga.StatusSuccess, "Payment realized successfully")
	return nil
}
