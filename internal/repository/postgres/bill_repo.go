package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pharmacare-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type billRepository struct {
	db *pgxpool.Pool
}

func NewBillRepository(db *pgxpool.Pool) domain.BillRepository {
	return &billRepository{db: db}
}

const billColumns = `id, bill_number, username, customer_name, mobile_number, items, total_amount, created_at`

func scanBill(row pgx.Row) (*domain.Bill, error) {
	var (
		b        domain.Bill
		itemsRaw []byte
	)
	err := row.Scan(&b.ID, &b.BillNumber, &b.Username, &b.CustomerName,
		&b.MobileNumber, &itemsRaw, &b.TotalAmount, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsRaw, &b.Items); err != nil {
		return nil, fmt.Errorf("decode bill items: %w", err)
	}
	return &b, nil
}

func (r *billRepository) Create(ctx context.Context, bill *domain.Bill) error {
	items, err := json.Marshal(bill.Items)
	if err != nil {
		return err
	}

	q := queryerFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO bills (id, bill_number, username, customer_name, mobile_number, items, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		bill.ID, bill.BillNumber, bill.Username, bill.CustomerName,
		bill.MobileNumber, items, bill.TotalAmount,
	).Scan(&bill.CreatedAt)
}

func (r *billRepository) GetByID(ctx context.Context, id, username string) (*domain.Bill, error) {
	q := queryerFrom(ctx, r.db)
	return scanBill(q.QueryRow(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1 AND username = $2`, id, username))
}

func (r *billRepository) ListByUsername(ctx context.Context, username string) ([]domain.Bill, error) {
	q := queryerFrom(ctx, r.db)
	rows, err := q.Query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE username = $1 ORDER BY created_at DESC`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

func (r *billRepository) BillNumberExists(ctx context.Context, number int64) (bool, error) {
	q := queryerFrom(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bills WHERE bill_number = $1)`, number).Scan(&exists)
	return exists, err
}
