// Package lifecycle owns the order state machine: it validates and
// executes transitions, creates orders, and computes the derived views
// every role's dashboard renders.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tablepay/internal/apperr"
	"tablepay/internal/domain"
	"tablepay/internal/feed"
	"tablepay/internal/logger"
	"tablepay/internal/session"
	"tablepay/internal/store"
)

// Engine executes commands against the order store and republishes the
// resulting change events on the feed.
type Engine struct {
	store store.Store
	feed  feed.Feed
	log   logger.Logger
	now   func() time.Time
}

func NewEngine(st store.Store, fd feed.Feed, log logger.Logger) *Engine {
	return &Engine{
		store: st,
		feed:  fd,
		log:   log,
		now:   time.Now,
	}
}

// ItemRequest is one cart line of a new order.
type ItemRequest struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// CreateRequest carries everything captured at billing time. All of it
// is immutable once the order row exists.
type CreateRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerContact string             `json:"customer_contact,omitempty"`
	TableNumber     string             `json:"table_number"`
	PaymentMode     domain.PaymentMode `json:"payment_mode"`
	Items           []ItemRequest      `json:"items"`
}

// Validate rejects a malformed request before any write happens.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.CustomerName) == "" {
		return fmt.Errorf("customer name: %w", apperr.ErrFieldIsEmpty)
	}
	if strings.TrimSpace(r.TableNumber) == "" {
		return fmt.Errorf("table number: %w", apperr.ErrFieldIsEmpty)
	}
	if !r.PaymentMode.Valid() {
		return apperr.ErrBadPaymentMode
	}
	if len(r.Items) == 0 {
		return apperr.ErrEmptyOrder
	}
	for i, it := range r.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item %d name: %w", i+1, apperr.ErrFieldIsEmpty)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item %d: %w, got %d", i+1, apperr.ErrBadQuantity, it.Quantity)
		}
		if it.Price < 0 {
			return fmt.Errorf("item %d: %w, got %f", i+1, apperr.ErrBadPrice, it.Price)
		}
	}
	return nil
}

// Create builds the order from the cart, fixes the bill amounts, and
// persists order + items + initial status log as one transaction. The
// fresh order always starts at pending.
func (e *Engine) Create(ctx context.Context, sess session.Session, req CreateRequest) (domain.Order, error) {
	log := e.log.Action("order_create")

	if err := req.Validate(); err != nil {
		log.Warn("Rejected invalid order request", "reason", err.Error())
		return domain.Order{}, err
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{
			MenuItemID: it.MenuItemID,
			ItemName:   it.Name,
			Quantity:   it.Quantity,
			Price:      it.Price,
			LineTotal:  float64(it.Quantity) * it.Price,
		}
	}
	bill := domain.ComputeBill(items)

	now := e.now()
	order := domain.Order{
		ID:              uuid.New(),
		OrderNumber:     domain.NewOrderNumber(now),
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		TableNumber:     req.TableNumber,
		Subtotal:        bill.Subtotal,
		Tax:             bill.Tax,
		Discount:        bill.Discount,
		ServiceCharge:   bill.ServiceCharge,
		Total:           bill.Total,
		PaymentMode:     req.PaymentMode,
		Status:          domain.StatusPending,
		CreatedBy:       sess.StaffID,
		CreatedAt:       now,
	}

	if err := e.store.CreateOrder(ctx, &order, items); err != nil {
		log.Error("Failed to save order", err)
		return domain.Order{}, fmt.Errorf("cannot save order: %w", err)
	}

	e.publish(ctx, domain.OrderEvent{
		Type:        domain.EventOrderInserted,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TableNumber: order.TableNumber,
		NewStatus:   order.Status,
		ChangedBy:   sess.StaffID,
		OccurredAt:  now,
	})

	log.Info("Order created", "order_number", order.OrderNumber, "total", order.Total)
	return order, nil
}

// Transition moves an order along the state machine. The write is
// conditioned on the expected prior status: when another client already
// advanced the order the result is ErrConflict and nothing is touched,
// never an overwrite.
func (e *Engine) Transition(ctx context.Context, sess session.Session, orderID uuid.UUID, expectedFrom, to domain.Status) error {
	log := e.log.Action("order_transition")

	if err := ValidateTransition(expectedFrom, to, sess.Role); err != nil {
		log.Warn("Rejected transition request",
			"order_id", orderID.String(), "from", string(expectedFrom), "to", string(to), "role", string(sess.Role), "reason", err.Error())
		return err
	}

	affected, err := e.store.UpdateOrderStatus(ctx, orderID, expectedFrom, to, sess.StaffID)
	if err != nil {
		log.Error("Failed to update order status", err, "order_id", orderID.String())
		return fmt.Errorf("cannot update order status: %w", err)
	}

	if affected == 0 {
		// Distinguish "no such order" from "someone was faster".
		if _, getErr := e.store.GetOrder(ctx, orderID); errors.Is(getErr, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		log.Info("Transition lost the race", "order_id", orderID.String(), "expected_from", string(expectedFrom))
		return apperr.ErrConflict
	}

	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		// The status change itself is committed; the event just loses
		// its display fields.
		order = domain.Order{ID: orderID, Status: to}
	}

	e.publish(ctx, domain.OrderEvent{
		Type:        domain.EventOrderUpdated,
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		TableNumber: order.TableNumber,
		OldStatus:   expectedFrom,
		NewStatus:   to,
		ChangedBy:   sess.StaffID,
		OccurredAt:  e.now(),
	})

	log.Info("Order transitioned",
		"order_number", order.OrderNumber, "from", string(expectedFrom), "to", string(to), "by", sess.StaffID)
	return nil
}

// ListActive returns every order the kitchen still has to deal with,
// newest first so staff sees the latest demand on top.
func (e *Engine) ListActive(ctx context.Context) ([]domain.Order, error) {
	return e.store.QueryOrders(ctx, store.Filter{StatusIn: domain.ActiveStatuses()}, store.CreatedAtDesc)
}

// ListReady returns orders awaiting pickup, oldest first: those have
// been waiting longest and should be served first.
func (e *Engine) ListReady(ctx context.Context) ([]domain.Order, error) {
	return e.store.QueryOrders(ctx, store.Filter{StatusIn: []domain.Status{domain.StatusReady}}, store.CreatedAtAsc)
}

// ListCompletedToday is the history view: every order created since
// midnight, whatever its current status, newest first.
func (e *Engine) ListCompletedToday(ctx context.Context) ([]domain.Order, error) {
	return e.store.QueryOrders(ctx, store.Filter{CreatedAfter: domain.StartOfDay(e.now())}, store.CreatedAtDesc)
}

// StatusLog returns the audit trail of one order, oldest first.
func (e *Engine) StatusLog(ctx context.Context, orderID uuid.UUID) ([]domain.StatusLogEntry, error) {
	return e.store.StatusLog(ctx, orderID)
}

// publish pushes a change event to the feed. The write is already
// committed at this point, so a broker hiccup is logged and swallowed;
// subscribers re-read ground truth on their next refetch anyway.
func (e *Engine) publish(ctx context.Context, ev domain.OrderEvent) {
	if err := e.feed.Publish(ctx, ev); err != nil {
		e.log.Action("event_publish_failed").Error("Failed to publish order event", err,
			"order_id", ev.OrderID.String(), "type", string(ev.Type))
	}
}
