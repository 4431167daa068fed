// Package feed bridges the order store's change events to subscribers.
// Dashboards subscribe to a filtered slice of events and refetch their
// list queries on every hit rather than patching local state; delivery
// is at-least-once and unordered, so ground truth always comes from a
// fresh query, never from the event payload.
package feed

import (
	"context"

	"tablepay/internal/domain"
)

// Handler receives matching events. Handlers must be quick; slow work
// belongs behind the refetch they trigger.
type Handler func(domain.OrderEvent)

// Filter scopes a subscription. Zero values match everything.
type Filter struct {
	Types     []domain.EventType
	NewStatus domain.Status
}

func (f Filter) Matches(ev domain.OrderEvent) bool {
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if t == ev.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.NewStatus != "" && ev.NewStatus != f.NewStatus {
		return false
	}
	return true
}

// Subscription is the release half of the scoped acquisition contract.
// Every subscriber must Close when its view goes away, or duplicate
// deliveries accumulate across navigation.
type Subscription interface {
	Close() error
}

// Feed is the change-feed a dashboard or notifier attaches to.
type Feed interface {
	Publish(ctx context.Context, ev domain.OrderEvent) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Close() error
}
