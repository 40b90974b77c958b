package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pharmacare-backend/internal/domain"
)

// The fakes below are plain in-memory repositories. GetByID hands out deep
// copies so that a failed unit of work cannot leak half-applied mutations
// into the store, mirroring transaction rollback.

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Lines = append([]domain.OrderLine(nil), o.Lines...)
	c.Ledger = append([]domain.ClassifiedLine(nil), o.Ledger...)
	c.AppliedRequests = append([]string(nil), o.AppliedRequests...)
	return &c
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	updateErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	order.Version = 1
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id, username string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Username != username {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) ListByUsername(_ context.Context, username string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Username == username {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListActionable(_ context.Context, username string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Username != username {
			continue
		}
		open := !o.Status.Terminal()
		refundsOutstanding := o.Status.Terminal() && o.Status != domain.StatusAccepted &&
			(!o.PartialRefundReceived || !o.FullRefundReceived)
		if open || refundsOutstanding {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.orders[order.ID]
	if !ok || stored.Username != order.Username {
		return domain.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return domain.ErrConcurrencyConflict
	}
	order.Version++
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

type fakeMedicineRepo struct {
	mu           sync.Mutex
	medicines    map[string]*domain.Medicine
	incrementErr error
}

func newFakeMedicineRepo(meds ...*domain.Medicine) *fakeMedicineRepo {
	r := &fakeMedicineRepo{medicines: make(map[string]*domain.Medicine)}
	for _, m := range meds {
		c := *m
		r.medicines[m.ID] = &c
	}
	return r
}

func (r *fakeMedicineRepo) Create(_ context.Context, med *domain.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *med
	r.medicines[med.ID] = &c
	return nil
}

func (r *fakeMedicineRepo) GetByID(_ context.Context, id string) (*domain.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.medicines[id]
	if !ok {
		return nil, domain.ErrMedicineNotFound
	}
	c := *m
	return &c, nil
}

func (r *fakeMedicineRepo) ListByUsername(_ context.Context, username string) ([]domain.Medicine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Medicine
	for _, m := range r.medicines {
		if m.Username == username {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMedicineRepo) Update(_ context.Context, med *domain.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.medicines[med.ID]
	if !ok || stored.Username != med.Username {
		return domain.ErrMedicineNotFound
	}
	stored.Name = med.Name
	stored.Quantity = med.Quantity
	stored.Price = med.Price
	return nil
}

func (r *fakeMedicineRepo) IncrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	m, ok := r.medicines[id]
	if !ok {
		return domain.ErrMedicineNotFound
	}
	m.Quantity += qty
	return nil
}

func (r *fakeMedicineRepo) DecrementStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.medicines[id]
	if !ok {
		return domain.ErrMedicineNotFound
	}
	if m.Quantity < qty {
		return domain.ErrInsufficientStock
	}
	m.Quantity -= qty
	return nil
}

func (r *fakeMedicineRepo) stock(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.medicines[id]; ok {
		return m.Quantity
	}
	return -1
}

type fakeBillRepo struct {
	mu    sync.Mutex
	bills map[string]*domain.Bill
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[string]*domain.Bill)}
}

func (r *fakeBillRepo) Create(_ context.Context, bill *domain.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC()
	}
	c := *bill
	r.bills[bill.ID] = &c
	return nil
}

func (r *fakeBillRepo) GetByID(_ context.Context, id, username string) (*domain.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok || b.Username != username {
		return nil, domain.ErrBillNotFound
	}
	c := *b
	return &c, nil
}

func (r *fakeBillRepo) ListByUsername(_ context.Context, username string) ([]domain.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Bill
	for _, b := range r.bills {
		if b.Username == username {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) BillNumberExists(_ context.Context, number int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.BillNumber == number {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by username
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return domain.ErrUsernameTaken
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	c := *user
	r.users[user.Username] = &c
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id, shopName, mobile, email, address string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.ShopName, u.Mobile, u.Email, u.Address = shopName, mobile, email, address
			u.UpdatedAt = time.Now().UTC()
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// fakeCache is a plain map-backed cache.CacheService with no expiry.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *fakeCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
}

func med(id, username string, qty int, price float64) *domain.Medicine {
	return &domain.Medicine{
		ID:       id,
		Username: username,
		Name:     fmt.Sprintf("med-%s", id),
		Quantity: qty,
		Price:    price,
	}
}
