package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/order-manager/internal/api/dto"
	"github.com/spec-kit/order-manager/internal/auth"
	"github.com/spec-kit/order-manager/internal/domain"
	"github.com/spec-kit/order-manager/internal/service"
	apperrors "github.com/spec-kit/order-manager/pkg/util/errorutil"
)

// OrdersHandler exposes order endpoints. All routes sit behind
// RequireAuthenticated, so the security context always carries a principal.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// List handles GET /orders, returning the caller's own orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	sc := auth.SecurityContextFrom(c)
	orders, err := h.orders.ListForUser(c.UserContext(), sc.Principal.Username)
	if err != nil {
		return err
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, dto.NewOrderResponse(order))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	sc := auth.SecurityContextFrom(c)

	var req dto.OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	order, err := h.orders.Create(c.UserContext(), sc.Principal.Username, lines)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Complete handles PUT /orders/:id/complete.
func (h *OrdersHandler) Complete(c *fiber.Ctx) error {
	sc := auth.SecurityContextFrom(c)
	order, err := h.orders.Complete(c.UserContext(), c.Params("id"),
		sc.Principal.ID, sc.Principal.Role == domain.RoleAdmin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Delete handles DELETE /orders/:id.
func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	sc := auth.SecurityContextFrom(c)
	if err := h.orders.Delete(c.UserContext(), c.Params("id"),
		sc.Principal.ID, sc.Principal.Role == domain.RoleAdmin); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
