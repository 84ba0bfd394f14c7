package service

import (
	"context"
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/payment"
)

// CatalogSource is the authoritative price source for cart validation.
type CatalogSource interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
}

type CatalogHandler struct {
	catalog CatalogSource
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogSource, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

func (h *CatalogHandler) productsByID(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	products, err := h.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

type ProcessorHandler struct {
	processor payment.Processor
	timeout   time.Duration
}

func NewProcessorHandler(processor payment.Processor, timeout time.Duration) *ProcessorHandler {
	return &ProcessorHandler{
		processor: processor,
		timeout:   timeout,
	}
}

func (h *ProcessorHandler) createIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	return h.processor.CreateIntent(ctx, amountMinor, currency, metadata)
}
