package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orchestrated/order-system/product-validation-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// MockValidationRepository is a testify mock for domain.ValidationRepository.
type MockValidationRepository struct {
	mock.Mock
}

func (m *MockValidationRepository) Save(ctx context.Context, validation *domain.Validation) error {
	args := m.Called(ctx, validation)
	return args.Error(0)
}

func (m *MockValidationRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (*domain.Validation, error) {
	args := m.Called(ctx, orderID, transactionID)
	if validation := args.Get(0); validation != nil {
		return validation.(*domain.Validation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockValidationRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a testify mock for domain.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
