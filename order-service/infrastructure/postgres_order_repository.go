package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/shared/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL. Order
// lines are stored as a JSONB document alongside the scalar columns.
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository.
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

type postgresOrder struct {
	ID            string    `db:"id"`
	TransactionID string    `db:"transaction_id"`
	Products      []byte    `db:"products"`
	TotalAmount   float64   `db:"total_amount"`
	TotalItems    int       `db:"total_items"`
	CreatedAt     time.Time `db:"created_at"`
}

// Save upserts an order.
func (r *PostgresOrderRepository) Save(ctx context.Context, order *models.Order) error {
	products, err := json.Marshal(order.Products)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order products")
	}

	query := `
		INSERT INTO orders (id, transaction_id, products, total_amount, total_items, created_at)
		VALUES (:id, :transaction_id, :products, :total_amount, :total_items, :created_at)
		ON CONFLICT (id) DO UPDATE
		SET total_amount = EXCLUDED.total_amount,
			total_items = EXCLUDED.total_items`

	_, err = r.db.NamedExecContext(ctx, query, &postgresOrder{
		ID:            order.ID.String(),
		TransactionID: order.TransactionID,
		Products:      products,
		TotalAmount:   order.TotalAmount,
		TotalItems:    order.TotalItems,
		CreatedAt:     order.CreatedAt,
	})
	return errors.Wrap(err, "failed to save order")
}

// FindByID returns the order with the given id, or nil when absent.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*models.Order, error) {
	query := `
		SELECT id, transaction_id, products, total_amount, total_items, created_at
		FROM orders
		WHERE id = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	var products []models.OrderProduct
	if err := json.Unmarshal(pgOrder.Products, &products); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal order products")
	}

	return &models.Order{
		ID:            models.ID(pgOrder.ID),
		TransactionID: pgOrder.TransactionID,
		Products:      products,
		TotalAmount:   pgOrder.TotalAmount,
		TotalItems:    pgOrder.TotalItems,
		CreatedAt:     pgOrder.CreatedAt,
	}, nil
}
