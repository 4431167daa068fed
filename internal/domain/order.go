package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status of an order. Orders only ever move forward through
// pending -> cooking -> ready -> completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCooking   Status = "cooking"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCooking, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// Active reports whether the order still needs kitchen or cashier attention.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusCooking || s == StatusReady
}

// ActiveStatuses in display order.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusCooking, StatusReady}
}

type PaymentMode string

const (
	PaymentCash PaymentMode = "cash"
	PaymentCard PaymentMode = "card"
	PaymentUPI  PaymentMode = "upi"
)

func (p PaymentMode) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

// Role of the staff member acting on an order.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleKitchen:
		return true
	}
	return false
}

// Order is a single customer bill, tracked from creation to completion.
// Everything except Status is fixed at creation time.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	CustomerContact string      `json:"customer_contact,omitempty"`
	TableNumber     string      `json:"table_number"`
	Subtotal        float64     `json:"subtotal"`
	Tax             float64     `json:"tax"`
	Discount        float64     `json:"discount"`
	ServiceCharge   float64     `json:"service_charge"`
	Total           float64     `json:"total"`
	PaymentMode     PaymentMode `json:"payment_mode"`
	Status          Status      `json:"status"`
	CreatedBy       string      `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of an order. ItemName and Price are snapshots
// taken at order time so later menu edits never alter a saved bill.
type OrderItem struct {
	ID         int64     `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	MenuItemID string    `json:"menu_item_id"`
	ItemName   string    `json:"item_name"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	LineTotal  float64   `json:"line_total"`
}

// StatusLogEntry is one row of the order status audit trail.
type StatusLogEntry struct {
	ID        int64     `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewOrderNumber generates the short human-readable code printed on the
// invoice: "TP" followed by the last 8 digits of the current unix-milli
// timestamp. Unique in practice, not enforced by the database.
func NewOrderNumber(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "TP" + ms
}

// StartOfDay returns midnight of t's day in t's location, used for the
// "today's orders" cutoff.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
