package domain

import (
	"context"
	"time"
)

// Medicine is an inventory row. Quantity is only ever mutated through the
// atomic IncrementStock/DecrementStock ledger operations.
type Medicine struct {
	ID        string    `json:"id"` // UUID
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MedicineRepository is the inventory ledger. Stock mutations must be single
// atomic statements so that concurrent updates against the same medicine never
// lose increments.
type MedicineRepository interface {
	Create(ctx context.Context, med *Medicine) error
	GetByID(ctx context.Context, id string) (*Medicine, error)
	ListByUsername(ctx context.Context, username string) ([]Medicine, error)
	Update(ctx context.Context, med *Medicine) error

	// IncrementStock unconditionally adds qty to the medicine's stock. Used when
	// ordered units are accepted from a supplier (goods physically received).
	IncrementStock(ctx context.Context, id string, qty int) error

	// DecrementStock subtracts qty, failing with ErrInsufficientStock when the
	// current stock is smaller than qty. Used at billing time (consumption);
	// reconciliation never decrements.
	DecrementStock(ctx context.Context, id string, qty int) error
}
