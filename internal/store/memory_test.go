package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepay/internal/apperr"
	"tablepay/internal/domain"
)

func newOrder(status domain.Status, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:           uuid.New(),
		OrderNumber:  domain.NewOrderNumber(createdAt),
		CustomerName: "Asha",
		TableNumber:  "4",
		PaymentMode:  domain.PaymentCash,
		Status:       status,
		CreatedBy:    "cashier-1",
		CreatedAt:    createdAt,
	}
}

func TestMemoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o := newOrder(domain.StatusPending, time.Now())
	items := []domain.OrderItem{
		{MenuItemID: "dosa", ItemName: "Dosa", Quantity: 2, Price: 80, LineTotal: 160},
	}
	require.NoError(t, m.CreateOrder(ctx, o, items))

	got, err := m.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, o.ID, got.Items[0].OrderID)
	assert.NotZero(t, got.Items[0].ID)

	log, err := m.StatusLog(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, domain.StatusPending, log[0].Status)

	_, err = m.GetOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o := newOrder(domain.StatusPending, time.Now())
	require.NoError(t, m.CreateOrder(ctx, o, nil))

	n, err := m.UpdateOrderStatus(ctx, o.ID, domain.StatusPending, domain.StatusCooking, "kitchen-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// Stale expectation matches nothing.
	n, err = m.UpdateOrderStatus(ctx, o.ID, domain.StatusPending, domain.StatusCooking, "kitchen-2")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, _ := m.GetOrder(ctx, o.ID)
	assert.Equal(t, domain.StatusCooking, got.Status)

	log, _ := m.StatusLog(ctx, o.ID)
	assert.Len(t, log, 2, "losing update must not append to the log")
}

func TestMemoryConcurrentUpdateOneWinner(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o := newOrder(domain.StatusReady, time.Now())
	require.NoError(t, m.CreateOrder(ctx, o, nil))

	const racers = 8
	var (
		wg   sync.WaitGroup
		wins = make(chan int64, racers)
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := m.UpdateOrderStatus(ctx, o.ID, domain.StatusReady, domain.StatusCompleted, "cashier-1")
			require.NoError(t, err)
			wins <- n
		}()
	}
	wg.Wait()
	close(wins)

	var total int64
	for n := range wins {
		total += n
	}
	assert.EqualValues(t, 1, total, "exactly one racer may win")

	got, _ := m.GetOrder(ctx, o.ID)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

func TestMemoryQueryOrders(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Now()
	oldest := newOrder(domain.StatusReady, now.Add(-30*time.Minute))
	middle := newOrder(domain.StatusCooking, now.Add(-10*time.Minute))
	newest := newOrder(domain.StatusPending, now)
	done := newOrder(domain.StatusCompleted, now.Add(-5*time.Minute))
	for _, o := range []*domain.Order{oldest, middle, newest, done} {
		require.NoError(t, m.CreateOrder(ctx, o, nil))
	}

	active, err := m.QueryOrders(ctx, Filter{StatusIn: domain.ActiveStatuses()}, CreatedAtDesc)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, newest.ID, active[0].ID)
	assert.Equal(t, oldest.ID, active[2].ID)

	ready, err := m.QueryOrders(ctx, Filter{StatusIn: []domain.Status{domain.StatusReady}}, CreatedAtAsc)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, oldest.ID, ready[0].ID)

	recent, err := m.QueryOrders(ctx, Filter{CreatedAfter: now.Add(-15 * time.Minute)}, CreatedAtDesc)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}
