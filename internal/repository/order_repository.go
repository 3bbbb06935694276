package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/herbtrace/herbtrace-api/internal/models"
)

// OrderRepository manages orders and their item snapshots.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository constructs a new repository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems inserts the order and its items in a single
// transaction. Either everything lands or nothing does.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = models.OrderPlaced
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const orderQuery = `INSERT INTO orders (id, user_id, total_amount, status, shipping_to, created_at, updated_at)
VALUES (:id, :user_id, :total_amount, :status, :shipping_to, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, orderQuery, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const itemQuery = `INSERT INTO order_items (id, order_id, batch_id, herb_name, unit_price, unit, quantity)
VALUES (:id, :order_id, :batch_id, :herb_name, :unit_price, :unit, :quantity)`
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = order.ID
		if _, err := tx.NamedExecContext(ctx, itemQuery, item); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

// FindByID returns an order with its items, or nil when no row matches.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	const query = `SELECT id, user_id, total_amount, status, shipping_to, created_at, updated_at FROM orders WHERE id = $1`
	var order models.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	items, err := r.itemsForOrders(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

// ListByUser returns the user's orders newest-first with items attached.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	const query = `SELECT id, user_id, total_amount, status, shipping_to, created_at, updated_at
FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := r.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// UpdateStatus moves an order through its fulfilment states.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	const query = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (r *OrderRepository) itemsForOrders(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	query, args, err := sqlx.In(`SELECT id, order_id, batch_id, herb_name, unit_price, unit, quantity
FROM order_items WHERE order_id IN (?)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("build order items query: %w", err)
	}
	query = r.db.Rebind(query)
	var items []models.OrderItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	grouped := make(map[string][]models.OrderItem, len(orderIDs))
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}
