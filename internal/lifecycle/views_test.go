package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tablepay/internal/domain"
)

func TestElapsedMinutes(t *testing.T) {
	now := time.Now()

	tests := []struct {
		age  time.Duration
		want int
	}{
		{0, 0},
		{59 * time.Second, 0},
		{60 * time.Second, 1},
		{5 * time.Minute, 5},
		{5*time.Minute + 59*time.Second, 5},
		{47 * time.Minute, 47},
	}

	for _, tt := range tests {
		o := domain.Order{CreatedAt: now.Add(-tt.age)}
		assert.Equal(t, tt.want, ElapsedMinutes(o, now), "age %s", tt.age)
	}
}

func TestIsUrgentBoundary(t *testing.T) {
	now := time.Now()

	tests := []struct {
		age  time.Duration
		want bool
	}{
		{4 * time.Minute, false},
		{5 * time.Minute, false},
		{5*time.Minute + time.Second, true},
		{6 * time.Minute, true},
	}

	for _, tt := range tests {
		o := domain.Order{CreatedAt: now.Add(-tt.age)}
		assert.Equal(t, tt.want, IsUrgent(o, now), "age %s", tt.age)
	}
}

func TestCountByStatus(t *testing.T) {
	orders := []domain.Order{
		{Status: domain.StatusPending},
		{Status: domain.StatusPending},
		{Status: domain.StatusCooking},
		{Status: domain.StatusReady},
	}

	counts := CountByStatus(orders)
	assert.Equal(t, 2, counts[domain.StatusPending])
	assert.Equal(t, 1, counts[domain.StatusCooking])
	assert.Equal(t, 1, counts[domain.StatusReady])
	assert.Zero(t, counts[domain.StatusCompleted])
}
