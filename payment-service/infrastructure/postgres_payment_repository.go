package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/payment-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL.
type PostgresPaymentRepository struct {
	db *sqlx.DB
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository.
func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

type postgresPayment struct {
	ID            string    `db:"id"`
	OrderID       string    `db:"order_id"`
	TransactionID string    `db:"transaction_id"`
	TotalAmount   float64   `db:"total_amount"`
	TotalItems    int       `db:"total_items"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Save upserts a payment keyed by (order_id, transaction_id).
func (r *PostgresPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, order_id, transaction_id, total_amount, total_items,
			status, created_at, updated_at
		) VALUES (
			:id, :order_id, :transaction_id, :total_amount, :total_items,
			:status, :created_at, :updated_at
		)
		ON CONFLICT (order_id, transaction_id) DO UPDATE
		SET status = EXCLUDED.status,
			total_amount = EXCLUDED.total_amount,
			total_items = EXCLUDED.total_items,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(payment))
	return errors.Wrap(err, "failed to save payment")
}

// FindByOrderIDAndTransactionID returns the payment for the composite key,
// or nil when absent.
func (r *PostgresPaymentRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (*domain.Payment, error) {
	query := `
		SELECT id, order_id, transaction_id, total_amount, total_items,
			   status, created_at, updated_at
		FROM payments
		WHERE order_id = $1 AND transaction_id = $2`

	var pgPayment postgresPayment
	err := r.db.GetContext(ctx, &pgPayment, query, orderID.String(), transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find payment")
	}

	return r.toDomain(&pgPayment), nil
}

// ExistsByOrderIDAndTransactionID reports whether a payment exists for the
// composite key.
func (r *PostgresPaymentRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND transaction_id = $2)",
		orderID.String(), transactionID)
	return exists, errors.Wrap(err, "failed to check payment existence")
}

func (r *PostgresPaymentRepository) toPostgres(payment *domain.Payment) *postgresPayment {
	return &postgresPayment{
		ID:            payment.ID.String(),
		OrderID:       payment.OrderID.String(),
		TransactionID: payment.TransactionID,
		TotalAmount:   payment.TotalAmount,
		TotalItems:    payment.TotalItems,
		Status:        string(payment.Status),
		CreatedAt:     payment.Timestamps.CreatedAt,
		UpdatedAt:     payment.Timestamps.UpdatedAt,
	}
}

func (r *PostgresPaymentRepository) toDomain(pgPayment *postgresPayment) *domain.Payment {
	return &domain.Payment{
		ID:            models.ID(pgPayment.ID),
		OrderID:       models.ID(pgPayment.OrderID),
		TransactionID: pgPayment.TransactionID,
		TotalAmount:   pgPayment.TotalAmount,
		TotalItems:    pgPayment.TotalItems,
		Status:        domain.PaymentStatus(pgPayment.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgPayment.CreatedAt,
			UpdatedAt: pgPayment.UpdatedAt,
		},
	}
}
