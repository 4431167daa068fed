package kitchen

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepay/internal/domain"
	"tablepay/internal/feed"
	"tablepay/internal/lifecycle"
	"tablepay/internal/logger"
	"tablepay/internal/session"
	"tablepay/internal/store"
)

func TestRenderEmpty(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	require.NoError(t, d.Render(nil, time.Now()))
	assert.Contains(t, out.String(), "No active orders.")
	assert.Contains(t, out.String(), "pending 0 | cooking 0 | ready 0")
}

func TestRenderOrders(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out)

	now := time.Now()
	orders := []domain.Order{
		{
			OrderNumber:  "TP00000001",
			TableNumber:  "4",
			CustomerName: "Asha",
			Status:       domain.StatusReady,
			CreatedAt:    now.Add(-7 * time.Minute),
			Items: []domain.OrderItem{
				{ItemName: "Dosa", Quantity: 2},
				{ItemName: "Chai", Quantity: 1},
			},
		},
		{
			OrderNumber:  "TP00000002",
			TableNumber:  "7",
			CustomerName: "Ravi",
			Status:       domain.StatusPending,
			CreatedAt:    now.Add(-1 * time.Minute),
		},
	}

	require.NoError(t, d.Render(orders, now))
	s := out.String()

	assert.Contains(t, s, "pending 1 | cooking 0 | ready 1")
	assert.Contains(t, s, "TP00000001")
	assert.Contains(t, s, "2x Dosa, 1x Chai")
	assert.Contains(t, s, "YES", "the 7 minute old ready order is urgent")
	assert.Contains(t, s, "TP00000002")
}

func TestRefreshShowsActiveOrders(t *testing.T) {
	log, err := logger.New("kitchen-test", "error")
	require.NoError(t, err)

	st := store.NewMemory()
	fd := feed.NewMemory()
	engine := lifecycle.NewEngine(st, fd, log)

	var out bytes.Buffer
	app := &App{
		engine:  engine,
		feed:    fd,
		display: NewDisplay(&out),
		log:     log,
		refresh: time.Minute,
	}

	ctx := context.Background()
	cashier := session.Session{StaffID: "cashier-1", Role: domain.RoleCashier}
	order, err := engine.Create(ctx, cashier, lifecycle.CreateRequest{
		CustomerName: "Asha",
		TableNumber:  "4",
		PaymentMode:  domain.PaymentCash,
		Items:        []lifecycle.ItemRequest{{Name: "Dosa", Quantity: 2, Price: 80}},
	})
	require.NoError(t, err)

	require.NoError(t, app.Refresh(ctx))
	assert.Contains(t, out.String(), order.OrderNumber)
	assert.Contains(t, out.String(), "pending 1")
}
