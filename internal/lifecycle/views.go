package lifecycle

import (
	"time"

	"tablepay/internal/domain"
)

// UrgencyThreshold is how long a ready order may wait before it gets
// flagged for priority serving.
const UrgencyThreshold = 5 * time.Minute

// ElapsedMinutes returns whole minutes since the order was created,
// as shown on the dashboard badges.
func ElapsedMinutes(o domain.Order, now time.Time) int {
	return int(now.Sub(o.CreatedAt) / time.Minute)
}

// IsUrgent flags an order that has been waiting strictly longer than
// the threshold. Exactly five minutes is not urgent; one second more is.
func IsUrgent(o domain.Order, now time.Time) bool {
	return now.Sub(o.CreatedAt) > UrgencyThreshold
}

// CountByStatus computes the per-status badge counts for a list view.
func CountByStatus(orders []domain.Order) map[domain.Status]int {
	counts := make(map[domain.Status]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}
