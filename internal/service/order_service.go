package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/order-manager/internal/domain"
	"github.com/spec-kit/order-manager/internal/events"
	"github.com/spec-kit/order-manager/internal/repository"
	apperrors "github.com/spec-kit/order-manager/pkg/util/errorutil"
)

// OrderService coordinates order lifecycle for authenticated customers.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create places a PENDING order for the named user after validating that
// every referenced product exists.
func (s *OrderService) Create(ctx context.Context, username string, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewValidationError("order requires at least one line", nil)
	}

	totalItems := 0
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", map[string]any{"product_id": line.ProductID})
		}
		if _, err := s.products.GetByID(ctx, line.ProductID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("product", map[string]any{"id": line.ProductID})
			}
			return nil, err
		}
		totalItems += line.Quantity
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}

	order := &domain.Order{
		UserID: user.ID,
		Lines:  lines,
		Status: domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventOrderCreated,
		Subject: user.Username,
		Payload: events.OrderCreatedPayload{
			OrderID:    order.ID,
			UserEmail:  user.Email,
			LineCount:  len(lines),
			TotalItems: totalItems,
		},
	})
	s.logger.Info("order created", zap.String("order_id", order.ID), zap.String("user_id", user.ID))
	return order, nil
}

// ListForUser returns the named user's orders.
func (s *OrderService) ListForUser(ctx context.Context, username string) ([]*domain.Order, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}
	return s.orders.ListByUserID(ctx, user.ID)
}

// Complete transitions an order to COMPLETED. Only the order's owner or an
// admin may complete it; ownership is checked against the requester id.
func (s *OrderService) Complete(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.authorize(ctx, orderID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if err := s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusCompleted); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCompleted

	email := ""
	if owner, err := s.users.GetByID(ctx, order.UserID); err == nil {
		email = owner.Email
	}
	s.publish(ctx, events.Event{
		Type:    events.EventOrderStatusChanged,
		Subject: order.UserID,
		Payload: events.OrderStatusChangedPayload{
			OrderID:   order.ID,
			UserEmail: email,
			OldStatus: oldStatus,
			NewStatus: domain.OrderStatusCompleted,
		},
	})
	s.logger.Info("order completed", zap.String("order_id", orderID))
	return order, nil
}

// Delete removes an order, owner or admin only.
func (s *OrderService) Delete(ctx context.Context, orderID, requesterID string, isAdmin bool) error {
	if _, err := s.authorize(ctx, orderID, requesterID, isAdmin); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventOrderDeleted,
		Subject: requesterID,
		Payload: events.OrderDeletedPayload{OrderID: orderID},
	})
	s.logger.Info("order deleted", zap.String("order_id", orderID))
	return nil
}

func (s *OrderService) authorize(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": orderID})
		}
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, apperrors.NewForbidden("not the order owner")
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
