package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/product-validation-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// PostgresValidationRepository implements ValidationRepository using
// PostgreSQL.
type PostgresValidationRepository struct {
	db *sqlx.DB
}

// NewPostgresValidationRepository creates a new PostgresValidationRepository.
func NewPostgresValidationRepository(db *sqlx.DB) *PostgresValidationRepository {
	return &PostgresValidationRepository{db: db}
}

type postgresValidation struct {
	ID            string    `db:"id"`
	OrderID       string    `db:"order_id"`
	TransactionID string    `db:"transaction_id"`
	Success       bool      `db:"success"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Save upserts a validation keyed by (order_id, transaction_id).
func (r *PostgresValidationRepository) Save(ctx context.Context, validation *domain.Validation) error {
	query := `
		INSERT INTO validations (
			id, order_id, transaction_id, success, created_at, updated_at
		) VALUES (
			:id, :order_id, :transaction_id, :success, :created_at, :updated_at
		)
		ON CONFLICT (order_id, transaction_id) DO UPDATE
		SET success = EXCLUDED.success,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(validation))
	return errors.Wrap(err, "failed to save validation")
}

// FindByOrderIDAndTransactionID returns the validation for the composite
// key, or nil when absent.
func (r *PostgresValidationRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (*domain.Validation, error) {
	query := `
		SELECT id, order_id, transaction_id, success, created_at, updated_at
		FROM validations
		WHERE order_id = $1 AND transaction_id = $2`

	var pgValidation postgresValidation
	err := r.db.GetContext(ctx, &pgValidation, query, orderID.String(), transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find validation")
	}

	return r.toDomain(&pgValidation), nil
}

// ExistsByOrderIDAndTransactionID reports whether a validation exists for the
// composite key.
func (r *PostgresValidationRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM validations WHERE order_id = $1 AND transaction_id = $2)",
		orderID.String(), transactionID)
	return exists, errors.Wrap(err, "failed to check validation existence")
}

func (r *PostgresValidationRepository) toPostgres(validation *domain.Validation) *postgresValidation {
	return &postgresValidation{
		ID:            validation.ID.String(),
		OrderID:       validation.OrderID.String(),
		TransactionID: validation.TransactionID,
		Success:       validation.Success,
		CreatedAt:     validation.Timestamps.CreatedAt,
		UpdatedAt:     validation.Timestamps.UpdatedAt,
	}
}

func (r *PostgresValidationRepository) toDomain(pgValidation *postgresValidation) *domain.Validation {
	return &domain.Validation{
		ID:            models.ID(pgValidation.ID),
		OrderID:       models.ID(pgValidation.OrderID),
		TransactionID: pgValidation.TransactionID,
		Success:       pgValidation.Success,
		Timestamps: models.Timestamps{
			CreatedAt: pgValidation.CreatedAt,
			UpdatedAt: pgValidation.UpdatedAt,
		},
	}
}
