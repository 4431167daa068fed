package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tablepay/internal/apperr"
	"tablepay/internal/domain"
)

// Memory is an in-process Store with the same conditional-write
// semantics as the Postgres implementation. It backs the package tests
// and the engine tests; nothing in production wiring uses it.
type Memory struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
	log    map[uuid.UUID][]domain.StatusLogEntry
	nextID int64
}

func NewMemory() *Memory {
	return &Memory{
		orders: make(map[uuid.UUID]domain.Order),
		log:    make(map[uuid.UUID][]domain.StatusLogEntry),
	}
}

func (m *Memory) CreateOrder(_ context.Context, order *domain.Order, items []domain.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	for i := range items {
		m.nextID++
		items[i].ID = m.nextID
		items[i].OrderID = order.ID
	}
	order.Items = items

	m.orders[order.ID] = cloneOrder(*order)
	m.nextID++
	m.log[order.ID] = append(m.log[order.ID], domain.StatusLogEntry{
		ID:        m.nextID,
		OrderID:   order.ID,
		Status:    order.Status,
		ChangedBy: order.CreatedBy,
		ChangedAt: now,
	})
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return domain.Order{}, apperr.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, id uuid.UUID, expectedFrom, to domain.Status, changedBy string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok || o.Status != expectedFrom {
		return 0, nil
	}

	o.Status = to
	o.UpdatedAt = time.Now()
	m.orders[id] = o

	m.nextID++
	m.log[id] = append(m.log[id], domain.StatusLogEntry{
		ID:        m.nextID,
		OrderID:   id,
		Status:    to,
		ChangedBy: changedBy,
		ChangedAt: o.UpdatedAt,
	})
	return 1, nil
}

func (m *Memory) QueryOrders(_ context.Context, f Filter, orderBy OrderBy) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Order
	for _, o := range m.orders {
		if len(f.StatusIn) > 0 && !statusIn(o.Status, f.StatusIn) {
			continue
		}
		if !f.CreatedAfter.IsZero() && o.CreatedAt.Before(f.CreatedAfter) {
			continue
		}
		out = append(out, cloneOrder(o))
	}

	sort.Slice(out, func(i, j int) bool {
		if orderBy == CreatedAtAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) StatusLog(_ context.Context, id uuid.UUID) ([]domain.StatusLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]domain.StatusLogEntry, len(m.log[id]))
	copy(entries, m.log[id])
	return entries, nil
}

// SetCreatedAt rewrites an order's creation timestamp, letting tests
// stage "has been waiting N minutes" scenarios.
func (m *Memory) SetCreatedAt(id uuid.UUID, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.orders[id]; ok {
		o.CreatedAt = t
		m.orders[id] = o
	}
}

func statusIn(s domain.Status, set []domain.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func cloneOrder(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
