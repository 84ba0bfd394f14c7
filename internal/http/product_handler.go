package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/catalog"
)

type ProductReader interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type ProductHandler struct {
	products ProductReader
	log      *slog.Logger
}

func NewProductHandler(products ProductReader, log *slog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		log:      log,
	}
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetAllProducts(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, apperr.Upstream(err, "catalog unavailable"))
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, convertProduct(p))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "product_id")
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		handleServiceError(w, r, h.log, apperr.Upstream(err, "catalog unavailable"))
		return
	}
	respondJSON(w, http.StatusOK, convertProduct(product))
}
