package dto

import (
	"time"

	"github.com/spec-kit/order-manager/internal/domain"
)

// OrderLineRequest is a single product position in an order request.
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderCreateRequest payload for placing an order.
type OrderCreateRequest struct {
	Lines []OrderLineRequest `json:"lines"`
}

// OrderLineResponse is the outward order line shape.
type OrderLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse is the outward order shape.
type OrderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Status    string              `json:"status"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewOrderResponse maps a domain order to its response shape.
func NewOrderResponse(order *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineResponse{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Status:    string(order.Status),
		Lines:     lines,
		CreatedAt: order.CreatedAt,
	}
}
