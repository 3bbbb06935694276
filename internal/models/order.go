package models

import "time"

// OrderStatus is the fulfilment state of a placed order.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a checkout snapshot for a customer.
type Order struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	TotalAmount float64     `db:"total_amount" json:"total_amount"`
	Status      OrderStatus `db:"status" json:"status"`
	ShippingTo  string      `db:"shipping_to" json:"shipping_to"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem snapshots a purchased batch at checkout time. Name and
// unit price are copied so later commercial edits do not rewrite order
// history.
type OrderItem struct {
	ID        string  `db:"id" json:"id"`
	OrderID   string  `db:"order_id" json:"order_id"`
	BatchID   string  `db:"batch_id" json:"batch_id"`
	HerbName  string  `db:"herb_name" json:"herb_name"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Unit      string  `db:"unit" json:"unit"`
	Quantity  int     `db:"quantity" json:"quantity"`
}
