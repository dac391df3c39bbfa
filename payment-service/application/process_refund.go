package application

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/payment-service/domain"
	"github.com/orchestrated/order-system/shared/saga"
)

// ProcessRefund is the payment participant's compensation step. The FAIL
// outcome is stamped up front: the saga proceeds to failure whether or not
// the refund itself succeeds, compensation is best effort and its failures
// are recorded in the history instead of escalated.
type ProcessRefund struct {
	paymentRepository domain.PaymentRepository
	publisher         saga.Publisher
}

// NewProcessRefund creates the use case.
func NewProcessRefund(paymentRepository domain.PaymentRepository, publisher saga.Publisher) *ProcessRefund {
	return &ProcessRefund{
		paymentRepository: paymentRepository,
		publisher:         publisher,
	}
}

// Execute reverts the payment and replies to the orchestrator exactly once.
func (uc *ProcessRefund) Execute(ctx context.Context, event *saga.Event) error {
	event.Mark(saga.SourcePayment, saga.StatusFail)

	if err := uc.refund(ctx, event); err != nil {
		cerr := &saga.CompensationError{Err: err}
		slog.Error("payment rollback failed",
			"order_id", event.OrderID,
			"transaction_id", event.TransactionID,
			"error", cerr,
		)
		event.AddHistory("Rollback not executed for payment: " + err.Error())
	} else {
		event.AddHistory("Rollback executed on payment")
	}

	return errors.Wrap(uc.publisher.Publish(ctx, saga.ChannelOrchestrator, event), "failed to publish refund reply")
}

func (uc *ProcessRefund) refund(ctx context.Context, event *saga.Event) error {
	payment, err := uc.paymentRepository.FindByOrderIDAndTransactionID(ctx, event.OrderID, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to find payment")
	}
	if payment == nil {
		return saga.NewNotFoundError("payment not found for order %s and transaction %s", event.OrderID, event.TransactionID)
	}

	payment.Refund()
	if err := uc.paymentRepository.Save(ctx, payment); err != nil {
		return errors.Wrap(err, "failed to save refunded payment")
	}

	// Copy the recorded totals back so earlier compensators see consistent
	// amounts even if the payload was mutated downstream.
	event.Payload.TotalAmount = payment.TotalAmount
	event.Payload.TotalItems = payment.TotalItems
	return nil
}
