package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
)

type CartValidator interface {
	Validate(ctx context.Context, lines []domain.CartLine) (*domain.CartValidation, error)
}

type CartHandler struct {
	validator CartValidator
	log       *slog.Logger
}

func NewCartHandler(validator CartValidator, log *slog.Logger) *CartHandler {
	return &CartHandler{
		validator: validator,
		log:       log,
	}
}

// POST /api/v1/cart/validate
func (h *CartHandler) ValidateCart(w http.ResponseWriter, r *http.Request) {
	var req []CartLineRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	lines := make([]domain.CartLine, 0, len(req))
	for _, l := range req {
		lines = append(lines, domain.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			CartPrice: l.CartPrice,
		})
	}

	result, err := h.validator.Validate(r.Context(), lines)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, convertValidation(result))
}
