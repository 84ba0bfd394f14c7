package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"
	r "github.com/adam-benyekkou/greenroots-ecom-sub000/internal/repository"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

const maxIdempotencyKeyLen = 255

type OrderService struct {
	repo r.OrderRepository
	log  *slog.Logger
}

func NewOrderService(repo r.OrderRepository, log *slog.Logger) *OrderService {
	return &OrderService{
		repo: repo,
		log:  log.With(slog.String("component", "order_service")),
	}
}

// CreateOrder persists a PENDING order with one line per item. Prices are taken as given
// and become the order's permanent snapshot. With an idempotency key, a repeat by the same
// user returns the stored order and created is false.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, items []domain.OrderItem, idempotencyKey string) (order *domain.Order, created bool, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if userID <= 0 {
		return nil, false, ErrUnauthenticated
	}
	if err := checkOrderItems(items); err != nil {
		return nil, false, err
	}
	if len(idempotencyKey) > maxIdempotencyKeyLen {
		return nil, false, apperr.Validation("idempotency key must be at most %d characters", maxIdempotencyKeyLen)
	}

	if idempotencyKey != "" {
		existing, err := s.findReplay(ctx, userID, idempotencyKey)
		if err != nil || existing != nil {
			return existing, false, err
		}
	}

	order = &domain.Order{
		UserID:         userID,
		Status:         domain.OrderStatusPending,
		IdempotencyKey: idempotencyKey,
		Lines:          make([]domain.OrderLine, 0, len(items)),
	}
	for _, item := range items {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	err = s.repo.CreateOrder(ctx, order)
	if errors.Is(err, r.ErrDuplicateOrder) {
		// lost a race against a concurrent request with the same key
		existing, ferr := s.findReplay(ctx, userID, idempotencyKey)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			return existing, false, nil
		}
		return nil, false, apperr.Conflict("order with this idempotency key already exists")
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to create order", slog.Int64("user_id", userID), logger.Err(err))
		return nil, false, apperr.Internal(err, "create order")
	}

	span.SetAttributes(attribute.Int64("order.id", order.ID))
	s.log.InfoContext(ctx, "order created",
		slog.Int64(logger.KeyOrderID, order.ID),
		slog.Int64("user_id", userID),
		slog.Int("lines", len(order.Lines)),
		slog.String("total", order.Total().StringFixed(2)))
	return order, true, nil
}

// findReplay returns the order stored under key, nil if there is none.
func (s *OrderService) findReplay(ctx context.Context, userID int64, key string) (*domain.Order, error) {
	existing, err := s.repo.GetOrderByIdempotencyKey(ctx, key)
	if errors.Is(err, r.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err, "look up idempotency key")
	}
	if existing.UserID != userID {
		return nil, apperr.Conflict("idempotency key already used")
	}
	s.log.InfoContext(ctx, "duplicate order request, returning stored order",
		slog.Int64(logger.KeyOrderID, existing.ID))
	return existing, nil
}

func (s *OrderService) GetOrder(ctx context.Context, principal domain.Principal, orderID int64) (*domain.Order, error) {
	if principal.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	return loadAccessibleOrder(ctx, s.repo, principal, orderID)
}

// ListOrders returns the principal's own orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, principal domain.Principal) ([]*domain.Order, error) {
	if principal.UserID <= 0 {
		return nil, ErrUnauthenticated
	}

	orders, err := s.repo.ListOrdersByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "list orders")
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// UpdateOrderStatus lets an admin move an order along its lifecycle.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, principal domain.Principal, orderID int64, next domain.OrderStatus) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if principal.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	if !principal.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if !next.IsValid() {
		return nil, apperr.Validation("unknown order status %q", next)
	}

	order, err := loadAccessibleOrder(ctx, s.repo, principal, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, apperr.InvalidState("order %d cannot move from %s to %s", orderID, order.Status, next)
	}

	err = s.repo.UpdateOrderStatus(ctx, orderID, order.Status, next)
	switch {
	case errors.Is(err, r.ErrStatusConflict):
		return nil, apperr.Conflict("order %d was modified concurrently", orderID)
	case errors.Is(err, r.ErrOrderNotFound):
		return nil, apperr.NotFound("order %d not found", orderID)
	case err != nil:
		s.log.ErrorContext(ctx, "failed to update order status", slog.Int64(logger.KeyOrderID, orderID), logger.Err(err))
		return nil, apperr.Internal(err, "update order status")
	}

	s.log.InfoContext(ctx, "order status changed",
		slog.Int64(logger.KeyOrderID, orderID),
		slog.String("from", order.Status.String()),
		slog.String("to", next.String()),
		slog.Int64("by", principal.UserID))

	updated, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal(err, "reload order")
	}
	return updated, nil
}

func loadAccessibleOrder(ctx context.Context, repo r.OrderRepository, principal domain.Principal, orderID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, apperr.Validation("order_id must be a positive integer")
	}

	order, err := repo.GetOrderByID(ctx, orderID)
	if errors.Is(err, r.ErrOrderNotFound) {
		return nil, apperr.NotFound("order %d not found", orderID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load order %d", orderID)
	}

	if !principal.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("not allowed to access order %d", orderID)
	}
	return order, nil
}

func checkOrderItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	for i, item := range items {
		switch {
		case item.ProductID <= 0:
			return apperr.Validation("item %d: product_id must be a positive integer", i)
		case item.Quantity <= 0:
			return apperr.Validation("item %d: quantity must be a positive integer", i)
		case !item.Price.IsPositive():
			return apperr.Validation("item %d: price must be positive", i)
		case !item.Price.Equal(item.Price.Round(2)):
			return apperr.Validation("item %d: price must have at most 2 decimal places", i)
		}
	}
	return nil
}
