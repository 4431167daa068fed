package feed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepay/internal/domain"
)

func updatedEvent(to domain.Status) domain.OrderEvent {
	return domain.OrderEvent{
		Type:      domain.EventOrderUpdated,
		OrderID:   uuid.New(),
		NewStatus: to,
	}
}

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		ev     domain.OrderEvent
		want   bool
	}{
		{
			name:   "empty filter matches everything",
			filter: Filter{},
			ev:     updatedEvent(domain.StatusCooking),
			want:   true,
		},
		{
			name:   "type mismatch",
			filter: Filter{Types: []domain.EventType{domain.EventOrderInserted}},
			ev:     updatedEvent(domain.StatusCooking),
			want:   false,
		},
		{
			name:   "status match",
			filter: Filter{Types: []domain.EventType{domain.EventOrderUpdated}, NewStatus: domain.StatusReady},
			ev:     updatedEvent(domain.StatusReady),
			want:   true,
		},
		{
			name:   "status mismatch",
			filter: Filter{NewStatus: domain.StatusReady},
			ev:     updatedEvent(domain.StatusCompleted),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.ev))
		})
	}
}

func TestMemoryPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var readyHits, allHits int
	readySub, err := m.Subscribe(ctx, Filter{NewStatus: domain.StatusReady}, func(domain.OrderEvent) {
		readyHits++
	})
	require.NoError(t, err)
	_, err = m.Subscribe(ctx, Filter{}, func(domain.OrderEvent) {
		allHits++
	})
	require.NoError(t, err)

	require.NoError(t, m.Publish(ctx, updatedEvent(domain.StatusReady)))
	require.NoError(t, m.Publish(ctx, updatedEvent(domain.StatusCooking)))

	assert.Equal(t, 1, readyHits)
	assert.Equal(t, 2, allHits)

	// After release, no further deliveries land on the old handler.
	require.NoError(t, readySub.Close())
	require.NoError(t, m.Publish(ctx, updatedEvent(domain.StatusReady)))
	assert.Equal(t, 1, readyHits)
	assert.Equal(t, 3, allHits)
}

func TestMemoryCloseDropsSubscribers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	hits := 0
	_, err := m.Subscribe(ctx, Filter{}, func(domain.OrderEvent) { hits++ })
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Publish(ctx, updatedEvent(domain.StatusReady)))
	assert.Zero(t, hits)
}
