package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tablepay/internal/apperr"
	"tablepay/internal/config"
	"tablepay/internal/domain"
	"tablepay/internal/logger"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.Postgres, log logger.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) IsAlive(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return apperr.ErrDBConn
	}
	return nil
}

const orderColumns = `id, order_number, customer_name, COALESCE(customer_contact, ''),
	table_number, subtotal, tax, discount, service_charge, total,
	payment_mode, status, created_by, created_at, updated_at`

func (p *Postgres) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	log := p.log.Action("create_order")

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var contact any
	if order.CustomerContact != "" {
		contact = order.CustomerContact
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			id,
			order_number,
			customer_name,
			customer_contact,
			table_number,
			subtotal,
			tax,
			discount,
			service_charge,
			total,
			payment_mode,
			status,
			created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`,
		order.ID,
		order.OrderNumber,
		order.CustomerName,
		contact,
		order.TableNumber,
		order.Subtotal,
		order.Tax,
		order.Discount,
		order.ServiceCharge,
		order.Total,
		order.PaymentMode,
		order.Status,
		order.CreatedBy,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (
				order_id,
				menu_item_id,
				item_name,
				quantity,
				price,
				line_total
			)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			items[i].OrderID,
			items[i].MenuItemID,
			items[i].ItemName,
			items[i].Quantity,
			items[i].Price,
			items[i].LineTotal,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.Status, order.CreatedBy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert order status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.Items = items
	log.Debug("order persisted", "order_number", order.OrderNumber, "items", len(items))
	return nil
}

func (p *Postgres) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o domain.Order
	err := p.pool.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerContact,
		&o.TableNumber, &o.Subtotal, &o.Tax, &o.Discount, &o.ServiceCharge, &o.Total,
		&o.PaymentMode, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, apperr.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := p.itemsFor(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id uuid.UUID, expectedFrom, to domain.Status, changedBy string) (int64, error) {
	log := p.log.Action("update_order_status")

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The WHERE status = expectedFrom clause is what keeps concurrent
	// clients from reverting or double-advancing each other's writes.
	cmdTag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, to, id, expectedFrom)
	if err != nil {
		return 0, fmt.Errorf("failed to update order status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Missing or stale; nothing was written, nothing to log.
		return 0, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, id, to, changedBy, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to insert order status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("status updated", "order_id", id.String(), "from", string(expectedFrom), "to", string(to))
	return cmdTag.RowsAffected(), nil
}

func (p *Postgres) QueryOrders(ctx context.Context, f Filter, orderBy OrderBy) ([]domain.Order, error) {
	var (
		conds []string
		args  []any
	)

	if len(f.StatusIn) > 0 {
		statuses := make([]string, len(f.StatusIn))
		for i, s := range f.StatusIn {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if !f.CreatedAfter.IsZero() {
		args = append(args, f.CreatedAfter)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if orderBy == CreatedAtAsc {
		q += " ORDER BY created_at ASC"
	} else {
		q += " ORDER BY created_at DESC"
	}

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []uuid.UUID
	)
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerContact,
			&o.TableNumber, &o.Subtotal, &o.Tax, &o.Discount, &o.ServiceCharge, &o.Total,
			&o.PaymentMode, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := p.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (p *Postgres) StatusLog(ctx context.Context, id uuid.UUID) ([]domain.StatusLogEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, order_id, status, changed_by, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query status log: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatusLogEntry
	for rows.Next() {
		var e domain.StatusLogEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) itemsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, order_id, menu_item_id, item_name, quantity, price, line_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.OrderItem)
	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.ItemName, &it.Quantity, &it.Price, &it.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}
