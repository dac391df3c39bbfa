package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// GenerateUUID creates a new UUID
func GenerateUUID() ID {
	return ID(uuid.New().String())
}

// String returns string representation
func (id ID) String() string {
	return string(id)
}

// NewTransactionID builds a saga transaction identifier. The timestamp prefix
// keeps ids sortable and the random token guarantees that replays of the same
// order start a fresh saga instance.
func NewTransactionID() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), uuid.New().String())
}

// Timestamps represents creation and update times
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimestamps creates new timestamps
func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update updates the UpdatedAt timestamp
func (t Timestamps) Update() Timestamps {
	t.UpdatedAt = time.Now()
	return t
}

// Product is a catalog item referenced by order lines.
type Product struct {
	Code      string  `json:"code"`
	UnitValue float64 `json:"unit_value"`
}

// OrderProduct is one order line: a product and the ordered quantity.
type OrderProduct struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Order is the business aggregate carried through the saga.
type Order struct {
	ID            ID             `json:"id"`
	TransactionID string         `json:"transaction_id"`
	Products      []OrderProduct `json:"products"`
	TotalAmount   float64        `json:"total_amount"`
	TotalItems    int            `json:"total_items"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TotalAmountOf sums quantity times unit value over the order lines.
func TotalAmountOf(products []OrderProduct) float64 {
	var total float64
	for _, p := range products {
		total += float64(p.Quantity) * p.Product.UnitValue
	}
	return total
}

// TotalItemsOf sums the ordered quantities.
func TotalItemsOf(products []OrderProduct) int {
	var total int
	for _, p := range products {
		total += p.Quantity
	}
	return total
}
