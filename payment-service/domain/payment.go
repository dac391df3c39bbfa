package domain

import (
	"context"

	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// PaymentStatus is the lifecycle of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusRefund  PaymentStatus = "REFUND"
)

// MinAmountValue is the minimum payable total accepted by the service.
const MinAmountValue = 0.1

// Payment is the participant-local aggregate, keyed by (orderID,
// transactionID) and owned exclusively by the payment service.
type Payment struct {
	ID            models.ID
	OrderID       models.ID
	TransactionID string
	TotalAmount   float64
	TotalItems    int
	Status        PaymentStatus
	Timestamps    models.Timestamps
}

// NewPayment creates a pending payment for an order transaction.
func NewPayment(orderID models.ID, transactionID string, totalAmount float64, totalItems int) *Payment {
	return &Payment{
		ID:            models.GenerateUUID(),
		OrderID:       orderID,
		TransactionID: transactionID,
		TotalAmount:   totalAmount,
		TotalItems:    totalItems,
		Status:        PaymentStatusPending,
		Timestamps:    models.NewTimestamps(),
	}
}

// MarkSuccess transitions the payment to SUCCESS.
func (p *Payment) MarkSuccess() {
	p.Status = PaymentStatusSuccess
	p.Timestamps = p.Timestamps.Update()
}

// Refund reverts the payment during compensation.
func (p *Payment) Refund() {
	p.Status = PaymentStatusRefund
	p.Timestamps = p.Timestamps.Update()
}

// ValidateAmount enforces the minimum payable total.
func ValidateAmount(amount float64) error {
	if amount < MinAmountValue {
		return saga.NewValidationError("the minimum amount available is %.2f", MinAmountValue)
	}
	return nil
}

// PaymentRepository is the payment store contract.
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (*Payment, error)
	ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error)
}
