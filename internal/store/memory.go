package store

import (
	"context"
	"sync"
	"time"

	"go.lumeweb.com/checkout-bridge/internal/domain"
)

var _ OrderStore = (*MemoryStore)(nil)

// MemoryStore keeps orders for the lifetime of the process.
type MemoryStore struct {
	orders sync.Map // map[string]*memoryEntry
	now    func() time.Time
}

type memoryEntry struct {
	mu    sync.Mutex
	order domain.PaymentOrder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Record(_ context.Context, order *domain.PaymentOrder) error {
	entry := &memoryEntry{order: *order}
	prepare(&entry.order, m.now())

	if _, loaded := m.orders.LoadOrStore(order.OrderID, entry); loaded {
		return domain.ErrOrderExists
	}

	return nil
}

func (m *MemoryStore) Lookup(_ context.Context, orderID string) (*domain.PaymentOrder, error) {
	entry, ok := m.load(orderID)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	order := entry.order
	return &order, nil
}

func (m *MemoryStore) ClaimFulfillment(_ context.Context, orderID string) error {
	entry, ok := m.load(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.order.Fulfilled() {
		return domain.ErrAlreadyFulfilled
	}

	now := m.now()
	entry.order.Status = domain.OrderStatusFulfilled
	entry.order.FulfilledAt = &now

	return nil
}

func (m *MemoryStore) ReleaseFulfillment(_ context.Context, orderID string) error {
	entry, ok := m.load(orderID)
	if !ok {
		return domain.ErrOrderNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.order.Status = domain.OrderStatusPending
	entry.order.FulfilledAt = nil

	return nil
}

func (m *MemoryStore) Prune(_ context.Context, before time.Time) (int, error) {
	pruned := 0

	m.orders.Range(func(key, value any) bool {
		entry := value.(*memoryEntry)

		entry.mu.Lock()
		expired := entry.order.CreatedAt.Before(before)
		entry.mu.Unlock()

		if expired {
			m.orders.Delete(key)
			pruned++
		}
		return true
	})

	return pruned, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) load(orderID string) (*memoryEntry, bool) {
	value, ok := m.orders.Load(orderID)
	if !ok {
		return nil, false
	}
	return value.(*memoryEntry), true
}
