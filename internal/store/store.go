package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tablepay/internal/domain"
)

// OrderBy fixes the sort direction of a query.
type OrderBy int

const (
	CreatedAtDesc OrderBy = iota
	CreatedAtAsc
)

// Filter narrows a QueryOrders call. Zero values mean "no bound".
type Filter struct {
	StatusIn     []domain.Status
	CreatedAfter time.Time
}

// Store is the durable home of orders and their line items. It is the
// single source of truth shared by every client; no client ever holds a
// lock on it.
type Store interface {
	// CreateOrder inserts the order, its items and the initial status-log
	// row as one atomic unit. A failure anywhere leaves no trace.
	CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error

	// GetOrder fetches a single order with its items.
	// Returns apperr.ErrNotFound when no such order exists.
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)

	// UpdateOrderStatus performs the conditional write
	// UPDATE orders SET status = to WHERE id = $1 AND status = expectedFrom
	// and reports the number of affected rows. Zero means the order is
	// missing or someone else already moved it; the caller must not
	// retry blindly.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, expectedFrom, to domain.Status, changedBy string) (int64, error)

	// QueryOrders returns orders matching the filter, items included,
	// sorted by created_at in the requested direction.
	QueryOrders(ctx context.Context, f Filter, orderBy OrderBy) ([]domain.Order, error)

	// StatusLog returns the audit trail of an order, oldest first.
	StatusLog(ctx context.Context, id uuid.UUID) ([]domain.StatusLogEntry, error)
}
