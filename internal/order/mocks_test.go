package order

import (
	"context"
	"sync"

	"github.com/susu25/dailyfresh/internal/cart"
	"github.com/susu25/dailyfresh/internal/domain"
	"github.com/susu25/dailyfresh/internal/repository"
)

// fakeStore implements repository.Store in memory. CommitOrder mirrors the
// real repository's semantics: a first pass validates stock for every line
// item, a second pass decrements, all under one lock, so concurrent commits
// serialize exactly like conditional decrements on Postgres rows.
type fakeStore struct {
	mu        sync.Mutex
	variants  map[int64]*domain.ProductVariant
	addresses map[int64]domain.Address
	orders    map[string]*domain.Order

	commitErr     error // forced CommitOrder failure
	duplicateHits int   // force this many ErrDuplicateOrderID results first
	commitCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		variants:  make(map[int64]*domain.ProductVariant),
		addresses: make(map[int64]domain.Address),
		orders:    make(map[string]*domain.Order),
	}
}

func (f *fakeStore) GetVariant(_ context.Context, id int64) (*domain.ProductVariant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.variants[id]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeStore) UpsertVariant(_ context.Context, variant *domain.ProductVariant) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *variant
	f.variants[variant.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteVariant(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.variants[id]; !ok {
		return repository.ErrVariantNotFound
	}
	delete(f.variants, id)
	return nil
}

func (f *fakeStore) GetAddress(_ context.Context, userID, addressID int64) (*domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, repository.ErrAddressNotFound
	}
	return &a, nil
}

func (f *fakeStore) ListAddresses(_ context.Context, userID int64) ([]domain.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var addresses []domain.Address
	for _, a := range f.addresses {
		if a.UserID == userID {
			addresses = append(addresses, a)
		}
	}
	return addresses, nil
}

func (f *fakeStore) CommitOrder(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commitCalls++

	if f.commitErr != nil {
		return f.commitErr
	}
	if f.duplicateHits > 0 {
		f.duplicateHits--
		return repository.ErrDuplicateOrderID
	}
	if _, exists := f.orders[order.ID]; exists {
		return repository.ErrDuplicateOrderID
	}

	// First pass: every decrement must fit, or nothing changes.
	for _, item := range order.Items {
		v, ok := f.variants[item.VariantID]
		if !ok || v.Stock < item.Quantity {
			return &repository.InsufficientStockError{VariantID: item.VariantID}
		}
	}

	// Second pass: apply the decrements.
	for _, item := range order.Items {
		f.variants[item.VariantID].Stock -= item.Quantity
		f.variants[item.VariantID].Sales += item.Quantity
	}

	stored := *order
	stored.Items = make([]domain.OrderLineItem, len(order.Items))
	copy(stored.Items, order.Items)
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, userID int64, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeStore) ListOrdersByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			copied := *o
			orders = append(orders, &copied)
		}
	}
	return orders, nil
}

func (f *fakeStore) RunMigrations(*repository.Credentials) error { return nil }

func (f *fakeStore) Close() error { return nil }

// fakeCart implements cart.Store in memory.
type fakeCart struct {
	mu        sync.Mutex
	entries   map[int64]map[int64]int // userID -> variantID -> quantity
	deleteErr error
	deleted   [][]int64 // variant id sets passed to DeleteEntries
}

func newFakeCart() *fakeCart {
	return &fakeCart{entries: make(map[int64]map[int64]int)}
}

func (f *fakeCart) GetQuantity(_ context.Context, userID, variantID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	quantity, ok := f.entries[userID][variantID]
	if !ok {
		return 0, cart.ErrEntryNotFound
	}
	return quantity, nil
}

func (f *fakeCart) SetQuantity(_ context.Context, userID, variantID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.entries[userID] == nil {
		f.entries[userID] = make(map[int64]int)
	}
	f.entries[userID][variantID] = quantity
	return nil
}

func (f *fakeCart) DeleteEntries(_ context.Context, userID int64, variantIDs ...int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, variantIDs)
	for _, id := range variantIDs {
		delete(f.entries[userID], id)
	}
	return nil
}

// fakeDispatcher records enqueued tasks.
type fakeDispatcher struct {
	mu         sync.Mutex
	enqueueErr error
	tasks      []string
	payloads   []any
}

func (f *fakeDispatcher) Enqueue(_ context.Context, task string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.tasks = append(f.tasks, task)
	f.payloads = append(f.payloads, payload)
	return nil
}
