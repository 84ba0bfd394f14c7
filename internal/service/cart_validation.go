package service

import (
	"context"
	"log/slog"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/logger"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/adam-benyekkou/greenroots-ecom-sub000/internal/service")

const (
	reasonNotFound     = "Product not found"
	reasonUnavailable  = "Product is no longer available"
	reasonPriceChanged = "Price has changed since item was added to cart"
)

type CartValidator struct {
	catalog *CatalogHandler
	log     *slog.Logger
}

func NewCartValidator(catalog *CatalogHandler, log *slog.Logger) *CartValidator {
	return &CartValidator{
		catalog: catalog,
		log:     log.With(slog.String("component", "cart_validator")),
	}
}

// Validate checks every line against current catalog prices with one batched lookup.
// Results keep input order; the cart price is used only to detect drift.
func (v *CartValidator) Validate(ctx context.Context, lines []domain.CartLine) (*domain.CartValidation, error) {
	ctx, span := tracer.Start(ctx, "CartValidator.Validate")
	defer span.End()
	span.SetAttributes(attribute.Int("cart.lines", len(lines)))

	ids := make([]int64, 0, len(lines))
	for i, line := range lines {
		if err := checkCartLine(i, line); err != nil {
			return nil, err
		}
		ids = append(ids, line.ProductID)
	}

	if len(lines) == 0 {
		return &domain.CartValidation{Items: []domain.ValidationResult{}, Summary: domain.Summarize(nil)}, nil
	}

	products, err := v.catalog.productsByID(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog lookup failed")
		v.log.ErrorContext(ctx, "catalog lookup failed", slog.Int("lines", len(lines)), logger.Err(err))
		return nil, apperr.Upstream(err, "catalog unavailable")
	}

	items := make([]domain.ValidationResult, 0, len(lines))
	for _, line := range lines {
		items = append(items, validateLine(line, products[line.ProductID]))
	}

	result := &domain.CartValidation{Items: items, Summary: domain.Summarize(items)}
	span.SetAttributes(attribute.Bool("cart.valid", result.Summary.CartValid))
	return result, nil
}

func checkCartLine(i int, line domain.CartLine) error {
	switch {
	case line.ProductID <= 0:
		return apperr.Validation("item %d: product_id must be a positive integer", i)
	case line.Quantity <= 0:
		return apperr.Validation("item %d: quantity must be a positive integer", i)
	case line.CartPrice.IsNegative():
		return apperr.Validation("item %d: cart_price must not be negative", i)
	}
	return nil
}

func validateLine(line domain.CartLine, product *domain.Product) domain.ValidationResult {
	res := domain.ValidationResult{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		CartPrice: line.CartPrice,
		LineTotal: decimal.Zero,
	}
	if product == nil {
		res.Error = reasonNotFound
		return res
	}

	res.ProductName = product.Name
	res.CurrentPrice = product.Price
	res.Available = product.Available
	res.PriceChanged = product.Price.Sub(line.CartPrice).Abs().GreaterThan(domain.PriceDriftTolerance)
	res.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))

	switch {
	case !product.Available:
		res.Error = reasonUnavailable
	case res.PriceChanged:
		res.Error = reasonPriceChanged
	default:
		res.Valid = true
	}
	return res
}
