package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, items []domain.OrderItem, idempotencyKey string) (*domain.Order, bool, error)
	GetOrder(ctx context.Context, principal domain.Principal, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, principal domain.Principal) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, principal domain.Principal, orderID int64, next domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	orders OrderService
	log    *slog.Logger
}

func NewOrdersHandler(orders OrderService, log *slog.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		log:    log,
	}
}

// POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	var req CreateOrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	order, created, err := h.orders.CreateOrder(r.Context(), principal.UserID, items, r.Header.Get("Idempotency-Key"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	respondJSON(w, status, convertOrder(order))
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), principalFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "order_id")
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), principalFromContext(r.Context()), orderID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}

// PATCH /api/v1/orders/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "order_id")
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	var req UpdateOrderStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), principalFromContext(r.Context()), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}
