package domain

import "time"

// OrderStatus represents lifecycle states of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderLine is a single product position within an order.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// Order is the domain model for customer orders.
type Order struct {
	ID        string
	UserID    string
	Lines     []OrderLine
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
