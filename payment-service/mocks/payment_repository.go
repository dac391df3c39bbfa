package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orchestrated/order-system/payment-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// MockPaymentRepository is a testify mock for domain.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (*domain.Payment, error) {
	args := m.Called(ctx, orderID, transactionID)
	if payment := args.Get(0); payment != nil {
		return payment.(*domain.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}
