package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/logger"
	"pharmacare-backend/pkg/utils"
)

// OrderUsecase owns supplier-order placement, the reconciliation operations
// and the refund flags. Every mutating operation runs as one transaction:
// read order -> validate -> stock increments -> versioned order write. If any
// step fails the whole request rolls back, so a bucket append can never land
// without its matching stock effect.
type OrderUsecase struct {
	orderRepo    domain.OrderRepository
	medicineRepo domain.MedicineRepository
	txManager    domain.TransactionManager
	maxLineQty   int
}

func NewOrderUsecase(orderRepo domain.OrderRepository, medicineRepo domain.MedicineRepository, txManager domain.TransactionManager, maxLineQty int) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:    orderRepo,
		medicineRepo: medicineRepo,
		txManager:    txManager,
		maxLineQty:   maxLineQty,
	}
}

// OrderLineRequest is one requested medicine/quantity pair at placement time.
type OrderLineRequest struct {
	MedicineID string `json:"medicineId"`
	Quantity   int    `json:"quantity"`
}

// PlaceOrder snapshots name and price from the current inventory rows into
// immutable order lines. Supplier orders are inbound, so placement never
// touches stock.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, username, supplierName string, items []OrderLineRequest) (*domain.Order, error) {
	supplierName = strings.TrimSpace(supplierName)
	if supplierName == "" || len(items) == 0 {
		return nil, fmt.Errorf("%w: supplier name and at least one medicine are required", domain.ErrInvalidRequest)
	}

	seen := make(map[string]bool, len(items))
	lines := make([]domain.OrderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
		}
		if u.maxLineQty > 0 && item.Quantity > u.maxLineQty {
			return nil, fmt.Errorf("%w: quantity exceeds the per-line limit of %d", domain.ErrInvalidRequest, u.maxLineQty)
		}
		if seen[item.MedicineID] {
			return nil, fmt.Errorf("%w: duplicate medicine in order", domain.ErrInvalidRequest)
		}
		seen[item.MedicineID] = true

		med, err := u.medicineRepo.GetByID(ctx, item.MedicineID)
		if err != nil {
			return nil, err
		}
		if med.Username != username {
			return nil, domain.ErrMedicineNotFound
		}

		lines = append(lines, domain.OrderLine{
			MedicineID: med.ID,
			Name:       med.Name,
			Quantity:   item.Quantity,
			Price:      med.Price,
		})
	}

	order := &domain.Order{
		ID:           utils.GenerateUUID(),
		OrderID:      utils.GenerateOrderID(),
		Username:     username,
		SupplierName: supplierName,
		Lines:        lines,
		Status:       domain.StatusPending,
	}

	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.Get().Info().
		Str("order_id", order.OrderID).
		Str("username", username).
		Str("supplier", supplierName).
		Int("lines", len(lines)).
		Msg("supplier order placed")

	return order, nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, username, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id, username)
}

func (u *OrderUsecase) ListOrders(ctx context.Context, username string) ([]domain.Order, error) {
	return u.orderRepo.ListByUsername(ctx, username)
}

func (u *OrderUsecase) ListActionable(ctx context.Context, username string) ([]domain.Order, error) {
	return u.orderRepo.ListActionable(ctx, username)
}

// reconcile is the shared unit of work for all bucket-mutating operations.
// apply returns the lines whose stock must be incremented (accepted goods);
// cancel paths return none.
func (u *OrderUsecase) reconcile(ctx context.Context, username, id, requestID string,
	apply func(o *domain.Order) ([]domain.OrderLine, error)) (*domain.Order, error) {

	var result *domain.Order
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByID(txCtx, id, username)
		if err != nil {
			return err
		}
		if err := order.RecordRequest(requestID); err != nil {
			return err
		}

		increments, err := apply(order)
		if err != nil {
			return err
		}
		for _, line := range increments {
			if err := u.medicineRepo.IncrementStock(txCtx, line.MedicineID, line.Quantity); err != nil {
				return err
			}
		}

		if err := u.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info().
		Str("order_id", result.OrderID).
		Str("status", string(result.Status)).
		Msg("order reconciled")

	return result, nil
}

// AcceptAll accepts every line's remaining allowance and receives the goods
// into stock.
func (u *OrderUsecase) AcceptAll(ctx context.Context, username, id, requestID string) (*domain.Order, error) {
	return u.reconcile(ctx, username, id, requestID, func(o *domain.Order) ([]domain.OrderLine, error) {
		return o.ApplyAcceptAll()
	})
}

// CancelAll is the full-cancel shortcut: a direct status write, no bucket
// reconciliation, no inventory effect.
func (u *OrderUsecase) CancelAll(ctx context.Context, username, id, requestID string) (*domain.Order, error) {
	return u.reconcile(ctx, username, id, requestID, func(o *domain.Order) ([]domain.OrderLine, error) {
		o.ApplyCancelAll()
		return nil, nil
	})
}

// PartialAccept classifies the requested quantities as accepted and increments
// stock for each surviving line.
func (u *OrderUsecase) PartialAccept(ctx context.Context, username, id, requestID string, requested map[string]int) (*domain.Order, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("%w: no quantities given", domain.ErrInvalidRequest)
	}
	return u.reconcile(ctx, username, id, requestID, func(o *domain.Order) ([]domain.OrderLine, error) {
		return o.ApplyPartialAccept(requested)
	})
}

// PartialCancel mirrors PartialAccept without any inventory effect.
func (u *OrderUsecase) PartialCancel(ctx context.Context, username, id, requestID string, requested map[string]int) (*domain.Order, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("%w: no quantities given", domain.ErrInvalidRequest)
	}
	return u.reconcile(ctx, username, id, requestID, func(o *domain.Order) ([]domain.OrderLine, error) {
		if _, err := o.ApplyPartialCancel(requested); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// AcceptRest accepts everything not yet classified and receives it into stock.
func (u *OrderUsecase) AcceptRest(ctx context.Context, username, id, requestID string) (*domain.Order, error) {
	return u.reconcile(ctx, username, id, requestID, func(o *domain.Order) ([]domain.OrderLine, error) {
		return o.ApplyAcceptRest()
	})
}

// CancelRest cancels everything not yet classified.
func (u *OrderUsecase) CancelRest(ctx context.Context, username, id, requestID string) (*domain.Order, error) {
	return u.reconcile(ctx, username, id, requestID, func(o *domain.Order) ([]domain.OrderLine, error) {
		if _, err := o.ApplyCancelRest(); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// markRefund sets one of the three independent refund flags. No status
// precondition; re-setting an already-true flag is a no-op.
func (u *OrderUsecase) markRefund(ctx context.Context, username, id string, set func(o *domain.Order) bool) (*domain.Order, error) {
	var result *domain.Order
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := u.orderRepo.GetByID(txCtx, id, username)
		if err != nil {
			return err
		}
		if changed := set(order); changed {
			order.UpdatedAt = time.Now().UTC()
			if err := u.orderRepo.Update(txCtx, order); err != nil {
				return err
			}
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *OrderUsecase) MarkRefundReceived(ctx context.Context, username, id string) (*domain.Order, error) {
	return u.markRefund(ctx, username, id, func(o *domain.Order) bool {
		if o.RefundReceived {
			return false
		}
		o.RefundReceived = true
		return true
	})
}

func (u *OrderUsecase) MarkPartialRefundReceived(ctx context.Context, username, id string) (*domain.Order, error) {
	return u.markRefund(ctx, username, id, func(o *domain.Order) bool {
		if o.PartialRefundReceived {
			return false
		}
		o.PartialRefundReceived = true
		return true
	})
}

func (u *OrderUsecase) MarkFullRefundReceived(ctx context.Context, username, id string) (*domain.Order, error) {
	return u.markRefund(ctx, username, id, func(o *domain.Order) bool {
		if o.FullRefundReceived {
			return false
		}
		o.FullRefundReceived = true
		return true
	})
}
