package usecase

import (
	"context"
	"sort"
	"time"

	"pharmacare-backend/internal/domain"
	"pharmacare-backend/pkg/cache"
)

const transactionsCachePrefix = "transactions:"

// TransactionsUsecase builds the day-grouped money-movement view: bills are
// income, accepted supplier goods are spend, cancelled supplier goods are
// refunds due. The view is derived, never stored, and cached per user.
type TransactionsUsecase struct {
	billRepo  domain.BillRepository
	orderRepo domain.OrderRepository
	cache     cache.CacheService
	cacheTTL  time.Duration
}

func NewTransactionsUsecase(billRepo domain.BillRepository, orderRepo domain.OrderRepository, c cache.CacheService, ttl time.Duration) *TransactionsUsecase {
	return &TransactionsUsecase{
		billRepo:  billRepo,
		orderRepo: orderRepo,
		cache:     c,
		cacheTTL:  ttl,
	}
}

func (u *TransactionsUsecase) History(ctx context.Context, username string) ([]domain.TransactionDay, error) {
	key := transactionsCachePrefix + username
	if cached, ok := u.cache.Get(key); ok {
		if days, ok := cached.([]domain.TransactionDay); ok {
			return days, nil
		}
	}

	bills, err := u.billRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	orders, err := u.orderRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var entries []domain.TransactionEntry
	for _, b := range bills {
		entries = append(entries, domain.TransactionEntry{
			Type:   domain.TransactionTypeBill,
			Label:  domain.TransactionTypeBill,
			Name:   b.CustomerName,
			Amount: b.TotalAmount,
			Time:   b.CreatedAt,
		})
	}
	for i := range orders {
		entries = append(entries, orderEntries(&orders[i])...)
	}

	// Stable: an order's spend and refund rows share a timestamp and must
	// keep their relative order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})

	days := groupByDay(entries)
	u.cache.Set(key, days, u.cacheTTL)
	return days, nil
}

// Invalidate drops the cached view after a write that changes it.
func (u *TransactionsUsecase) Invalidate(username string) {
	u.cache.Delete(transactionsCachePrefix + username)
}

// orderEntries turns one supplier order into its transaction rows: one spend
// row for accepted goods and one refund row for cancelled goods.
func orderEntries(o *domain.Order) []domain.TransactionEntry {
	var entries []domain.TransactionEntry

	if spent := bucketValue(o, domain.BucketPartialAccepted, domain.BucketAcceptedRest); spent > 0 {
		entries = append(entries, domain.TransactionEntry{
			Type:   domain.TransactionTypeOrder,
			Label:  domain.TransactionTypeOrder,
			Name:   o.SupplierName,
			Amount: spent,
			Time:   o.UpdatedAt,
		})
	}

	if refunded := bucketValue(o, domain.BucketPartialCancelled, domain.BucketCancelledRest); refunded > 0 {
		entries = append(entries, domain.TransactionEntry{
			Type:   domain.TransactionTypeRefund,
			Label:  refundLabel(o),
			Name:   o.SupplierName,
			Amount: refunded,
			Time:   o.UpdatedAt,
		})
	}

	return entries
}

// refundLabel classifies a refund row from the cancel buckets: both buckets
// populated reads as a full refund of the remainder, partialCancelled alone
// as a partial refund, anything else as a plain refund.
func refundLabel(o *domain.Order) string {
	partial := len(o.Bucket(domain.BucketPartialCancelled)) > 0
	rest := len(o.Bucket(domain.BucketCancelledRest)) > 0
	switch {
	case partial && rest:
		return domain.RefundLabelFull
	case partial:
		return domain.RefundLabelPartial
	default:
		return domain.RefundLabelPlain
	}
}

func bucketValue(o *domain.Order, kinds ...domain.BucketKind) float64 {
	var sum float64
	for _, kind := range kinds {
		for _, line := range o.Bucket(kind) {
			sum += line.Price * float64(line.Quantity)
		}
	}
	return sum
}

func groupByDay(entries []domain.TransactionEntry) []domain.TransactionDay {
	var days []domain.TransactionDay
	for _, e := range entries {
		date := e.Time.Format("2 January 2006")
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, domain.TransactionDay{
			Date:    date,
			Entries: []domain.TransactionEntry{e},
		})
	}
	return days
}
