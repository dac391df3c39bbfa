package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/orchestrated/order-system/inventory-service/domain"
	"github.com/orchestrated/order-system/shared/models"
)

// PostgresInventoryRepository implements InventoryRepository using
// PostgreSQL.
type PostgresInventoryRepository struct {
	db *sqlx.DB
}

// NewPostgresInventoryRepository creates a new PostgresInventoryRepository.
func NewPostgresInventoryRepository(db *sqlx.DB) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{db: db}
}

type postgresInventory struct {
	ID          string    `db:"id"`
	ProductCode string    `db:"product_code"`
	Available   int       `db:"available"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// FindByProductCode returns the stock row for a product code, or nil when
// absent.
func (r *PostgresInventoryRepository) FindByProductCode(ctx context.Context, code string) (*domain.Inventory, error) {
	query := `
		SELECT id, product_code, available, created_at, updated_at
		FROM inventories
		WHERE product_code = $1`

	var pgInventory postgresInventory
	err := r.db.GetContext(ctx, &pgInventory, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find inventory")
	}

	return &domain.Inventory{
		ID:          models.ID(pgInventory.ID),
		ProductCode: pgInventory.ProductCode,
		Available:   pgInventory.Available,
		Timestamps: models.Timestamps{
			CreatedAt: pgInventory.CreatedAt,
			UpdatedAt: pgInventory.UpdatedAt,
		},
	}, nil
}

// Save upserts the stock row keyed by product code.
func (r *PostgresInventoryRepository) Save(ctx context.Context, inventory *domain.Inventory) error {
	query := `
		INSERT INTO inventories (id, product_code, available, created_at, updated_at)
		VALUES (:id, :product_code, :available, :created_at, :updated_at)
		ON CONFLICT (product_code) DO UPDATE
		SET available = EXCLUDED.available,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, &postgresInventory{
		ID:          inventory.ID.String(),
		ProductCode: inventory.ProductCode,
		Available:   inventory.Available,
		CreatedAt:   inventory.Timestamps.CreatedAt,
		UpdatedAt:   inventory.Timestamps.UpdatedAt,
	})
	return errors.Wrap(err, "failed to save inventory")
}
