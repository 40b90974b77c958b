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

// orderRepository stores the order aggregate document-style: one row per
// order, with the original lines, the classification ledger and the applied
// request ids as JSONB columns. The integer version column backs the
// optimistic concurrency check required for concurrent reconciliation.
type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_id, username, supplier_name, lines, ledger, status,
	refund_received, partial_refund_received, full_refund_received,
	notes, applied_requests, version, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                              domain.Order
		linesRaw, ledgerRaw, requestsRaw []byte
	)
	err := row.Scan(&o.ID, &o.OrderID, &o.Username, &o.SupplierName,
		&linesRaw, &ledgerRaw, &o.Status,
		&o.RefundReceived, &o.PartialRefundReceived, &o.FullRefundReceived,
		&o.Notes, &requestsRaw, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(linesRaw, &o.Lines); err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	if err := json.Unmarshal(ledgerRaw, &o.Ledger); err != nil {
		return nil, fmt.Errorf("decode order ledger: %w", err)
	}
	if err := json.Unmarshal(requestsRaw, &o.AppliedRequests); err != nil {
		return nil, fmt.Errorf("decode applied requests: %w", err)
	}
	return &o, nil
}

func marshalOrder(o *domain.Order) (lines, ledger, requests []byte, err error) {
	if lines, err = json.Marshal(o.Lines); err != nil {
		return nil, nil, nil, err
	}
	// Marshal empty slices as [] rather than null so scans round-trip.
	if o.Ledger == nil {
		ledger = []byte("[]")
	} else if ledger, err = json.Marshal(o.Ledger); err != nil {
		return nil, nil, nil, err
	}
	if o.AppliedRequests == nil {
		requests = []byte("[]")
	} else if requests, err = json.Marshal(o.AppliedRequests); err != nil {
		return nil, nil, nil, err
	}
	return lines, ledger, requests, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	lines, ledger, requests, err := marshalOrder(order)
	if err != nil {
		return err
	}

	q := queryerFrom(ctx, r.db)
	return q.QueryRow(ctx, `
		INSERT INTO supplier_orders
			(id, order_id, username, supplier_name, lines, ledger, status,
			 refund_received, partial_refund_received, full_refund_received,
			 notes, applied_requests, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
		RETURNING created_at, updated_at`,
		order.ID, order.OrderID, order.Username, order.SupplierName,
		lines, ledger, order.Status,
		order.RefundReceived, order.PartialRefundReceived, order.FullRefundReceived,
		order.Notes, requests,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id, username string) (*domain.Order, error) {
	q := queryerFrom(ctx, r.db)
	return scanOrder(q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM supplier_orders WHERE id = $1 AND username = $2`,
		id, username))
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	q := queryerFrom(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) ListByUsername(ctx context.Context, username string) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM supplier_orders
		 WHERE username = $1 ORDER BY created_at DESC`, username)
}

func (r *orderRepository) ListActionable(ctx context.Context, username string) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM supplier_orders
		 WHERE username = $1
		   AND (status IN ($2, $3, $4)
		        OR (status IN ($5, $6)
		            AND (partial_refund_received = false OR full_refund_received = false)))
		 ORDER BY created_at DESC`,
		username,
		domain.StatusPending, domain.StatusPartiallyAccepted, domain.StatusPartiallyCancelled,
		domain.StatusCancelled, domain.StatusCompleted)
}

// Update writes the mutable part of the aggregate guarded by the version the
// caller read. A failed check means another request got in between; the caller
// retries or surfaces the conflict.
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	_, ledger, requests, err := marshalOrder(order)
	if err != nil {
		return err
	}

	q := queryerFrom(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE supplier_orders
		SET ledger = $3, status = $4,
		    refund_received = $5, partial_refund_received = $6, full_refund_received = $7,
		    applied_requests = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND username = $10 AND version = $2`,
		order.ID, order.Version,
		ledger, order.Status,
		order.RefundReceived, order.PartialRefundReceived, order.FullRefundReceived,
		requests, order.UpdatedAt, order.Username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	order.Version++
	return nil
}
