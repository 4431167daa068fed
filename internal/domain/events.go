package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType distinguishes change-feed events.
type EventType string

const (
	EventOrderInserted EventType = "order_inserted"
	EventOrderUpdated  EventType = "order_updated"
)

// OrderEvent is one change-feed message. For inserts NewStatus is the
// initial status and OldStatus is empty; for updates both are set.
type OrderEvent struct {
	Type        EventType `json:"type"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	TableNumber string    `json:"table_number"`
	OldStatus   Status    `json:"old_status,omitempty"`
	NewStatus   Status    `json:"new_status"`
	ChangedBy   string    `json:"changed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
