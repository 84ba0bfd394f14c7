package http

import (
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/shopspring/decimal"
)

type CartLineRequestDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	CartPrice decimal.Decimal `json:"cart_price"`
}

type ValidationResultDTO struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name,omitempty"`
	Valid        bool    `json:"valid"`
	CurrentPrice float64 `json:"current_price"`
	CartPrice    float64 `json:"cart_price"`
	PriceChanged bool    `json:"price_changed"`
	Available    bool    `json:"available"`
	Quantity     int     `json:"quantity"`
	LineTotal    float64 `json:"line_total"`
	Error        string  `json:"error,omitempty"`
}

type CartSummaryDTO struct {
	ValidItems   int     `json:"valid_items"`
	InvalidItems int     `json:"invalid_items"`
	TotalAmount  float64 `json:"total_amount"`
	TotalItems   int     `json:"total_items"`
	CartValid    bool    `json:"cart_valid"`
}

type CartValidationResponseDTO struct {
	Items   []ValidationResultDTO `json:"items"`
	Summary CartSummaryDTO        `json:"summary"`
}

type OrderItemRequestDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequestDTO struct {
	Items []OrderItemRequestDTO `json:"items"`
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status"`
}

type OrderLineDTO struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderResponseDTO struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	Status      string         `json:"status"`
	TotalAmount float64        `json:"total_amount"`
	Items       []OrderLineDTO `json:"items"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

type CreateIntentRequestDTO struct {
	OrderID  int64  `json:"order_id"`
	Currency string `json:"currency"`
}

type CreateIntentResponseDTO struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type PaymentStatusResponseDTO struct {
	OrderID         int64   `json:"order_id"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	FailureReason   string  `json:"failure_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ProductDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Available   bool    `json:"available"`
}

func convertValidation(v *domain.CartValidation) CartValidationResponseDTO {
	items := make([]ValidationResultDTO, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, ValidationResultDTO{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Valid:        item.Valid,
			CurrentPrice: item.CurrentPrice.InexactFloat64(),
			CartPrice:    item.CartPrice.InexactFloat64(),
			PriceChanged: item.PriceChanged,
			Available:    item.Available,
			Quantity:     item.Quantity,
			LineTotal:    item.LineTotal.Round(2).InexactFloat64(),
			Error:        item.Error,
		})
	}
	return CartValidationResponseDTO{
		Items: items,
		Summary: CartSummaryDTO{
			ValidItems:   v.Summary.ValidItems,
			InvalidItems: v.Summary.InvalidItems,
			TotalAmount:  v.Summary.TotalAmount.InexactFloat64(),
			TotalItems:   v.Summary.TotalItems,
			CartValid:    v.Summary.CartValid,
		},
	}
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	lines := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineDTO{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price.InexactFloat64(),
		})
	}
	return OrderResponseDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      o.Status.String(),
		TotalAmount: o.Total().InexactFloat64(),
		Items:       lines,
		CreatedAt:   formatTime(o.CreatedAt),
		UpdatedAt:   formatTime(o.UpdatedAt),
	}
}

func convertTransaction(tx *domain.PaymentTransaction) PaymentStatusResponseDTO {
	return PaymentStatusResponseDTO{
		OrderID:         tx.OrderID,
		PaymentIntentID: tx.TransactionID,
		Amount:          tx.Amount.InexactFloat64(),
		Currency:        tx.Currency,
		Status:          tx.Status.String(),
		FailureReason:   tx.FailureReason,
		CreatedAt:       formatTime(tx.CreatedAt),
		UpdatedAt:       formatTime(tx.UpdatedAt),
	}
}

func convertProduct(p *domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		ImageURL:    p.ImageURL,
		Available:   p.Available,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
