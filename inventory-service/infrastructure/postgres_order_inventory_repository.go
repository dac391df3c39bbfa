package infrastructure

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/inventory-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// PostgresOrderInventoryRepository implements OrderInventoryRepository using
// PostgreSQL.
type PostgresOrderInventoryRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderInventoryRepository creates a new
// PostgresOrderInventoryRepository.
func NewPostgresOrderInventoryRepository(db *sqlx.DB) *PostgresOrderInventoryRepository {
	return &PostgresOrderInventoryRepository{db: db}
}

type postgresOrderInventory struct {
	ID            string    `db:"id"`
	OrderID       string    `db:"order_id"`
	TransactionID string    `db:"transaction_id"`
	ProductCode   string    `db:"product_code"`
	OrderQuantity int       `db:"order_quantity"`
	OldQuantity   int       `db:"old_quantity"`
	NewQuantity   int       `db:"new_quantity"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Save inserts a stock movement snapshot.
func (r *PostgresOrderInventoryRepository) Save(ctx context.Context, orderInventory *domain.OrderInventory) error {
	query := `
		INSERT INTO order_inventories (
			id, order_id, transaction_id, product_code, order_quantity,
			old_quantity, new_quantity, created_at, updated_at
		) VALUES (
			:id, :order_id, :transaction_id, :product_code, :order_quantity,
			:old_quantity, :new_quantity, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(orderInventory))
	return errors.Wrap(err, "failed to save inventory movement")
}

// FindByOrderIDAndTransactionID returns the movements recorded for the
// composite key.
func (r *PostgresOrderInventoryRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) ([]*domain.OrderInventory, error) {
	query := `
		SELECT id, order_id, transaction_id, product_code, order_quantity,
			   old_quantity, new_quantity, created_at, updated_at
		FROM order_inventories
		WHERE order_id = $1 AND transaction_id = $2
		ORDER BY created_at`

	var rows []postgresOrderInventory
	if err := r.db.SelectContext(ctx, &rows, query, orderID.String(), transactionID); err != nil {
		return nil, errors.Wrap(err, "failed to find inventory movements")
	}

	movements := make([]*domain.OrderInventory, 0, len(rows))
	for i := range rows {
		movements = append(movements, r.toDomain(&rows[i]))
	}
	return movements, nil
}

// ExistsByOrderIDAndTransactionID reports whether any movement exists for the
// composite key.
func (r *PostgresOrderInventoryRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID models.ID, transactionID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM order_inventories WHERE order_id = $1 AND transaction_id = $2)",
		orderID.String(), transactionID)
	return exists, errors.Wrap(err, "failed to check inventory movement existence")
}

func (r *PostgresOrderInventoryRepository) toPostgres(m *domain.OrderInventory) *postgresOrderInventory {
	return &postgresOrderInventory{
		ID:            m.ID.String(),
		OrderID:       m.OrderID.String(),
		TransactionID: m.TransactionID,
		ProductCode:   m.ProductCode,
		OrderQuantity: m.OrderQuantity,
		OldQuantity:   m.OldQuantity,
		NewQuantity:   m.NewQuantity,
		CreatedAt:     m.Timestamps.CreatedAt,
		UpdatedAt:     m.Timestamps.UpdatedAt,
	}
}

func (r *PostgresOrderInventoryRepository) toDomain(row *postgresOrderInventory) *domain.OrderInventory {
	return &domain.OrderInventory{
		ID:            models.ID(row.ID),
		OrderID:       models.ID(row.OrderID),
		TransactionID: row.TransactionID,
		ProductCode:   row.ProductCode,
		OrderQuantity: row.OrderQuantity,
		OldQuantity:   row.OldQuantity,
		NewQuantity:   row.NewQuantity,
		Timestamps: models.Timestamps{
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		},
	}
}
