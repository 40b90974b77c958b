package domain

import (
	"context"
	"time"
)

// Bill is a point-of-sale receipt. Items carry name/price snapshots like
// order lines; stock is decremented at billing time.
type Bill struct {
	ID           string      `json:"id"` // UUID
	BillNumber   int64       `json:"billNumber"`
	Username     string      `json:"username"`
	CustomerName string      `json:"customerName"`
	MobileNumber string      `json:"mobileNumber"`
	Items        []OrderLine `json:"medicines"`
	TotalAmount  float64     `json:"totalAmount"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type BillRepository interface {
	Create(ctx context.Context, bill *Bill) error
	GetByID(ctx context.Context, id, username string) (*Bill, error)
	ListByUsername(ctx context.Context, username string) ([]Bill, error)
	BillNumberExists(ctx context.Context, number int64) (bool, error)
}
