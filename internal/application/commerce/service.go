// Package commerce serves the bot's read-only queries against the shop.
package commerce

import (
	"context"

	"github.com/sellauth-tools/stockbot/internal/application"
	domain "github.com/sellauth-tools/stockbot/internal/domain/commerce"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	commerceService = "commerce-service"

	useCaseGetInvoice   = "commerce.get_invoice"
	useCaseGetOrder     = "commerce.get_order"
	useCaseListProducts = "commerce.list_products"
	useCaseGetVariants  = "commerce.get_variants"
	useCaseComputeStock = "commerce.compute_stock"
)

// Service runs each query inside the use case envelope. Nothing is cached;
// every call reaches the shop.
type Service struct {
	shop Shop
	env  *application.Envelope
	log  observability.Logger
}

func NewService(shop Shop, tel observability.Observability) *Service {
	tel = observability.OrNop(tel)
	return &Service{
		shop: shop,
		env:  application.NewEnvelope(commerceService, tel),
		log:  tel.Logger().With(observability.F("service", commerceService)),
	}
}

// GetInvoice returns nil when the invoice cannot be fetched; err carries the reason.
func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (order *domain.Order, err error) {
	err = s.env.Run(ctx, useCaseGetInvoice, "GetInvoice",
		[]observability.Field{observability.F("invoice_id", invoiceID)},
		[]attribute.KeyValue{attribute.String("invoice.id", invoiceID)},
		func(ctx context.Context, span trace.Span) error {
			var err error
			order, err = s.shop.GetInvoice(ctx, invoiceID)
			if order != nil {
				span.SetAttributes(attribute.Int("invoice.deliverables", len(order.Deliverables)))
			}
			return err
		},
	)
	return order, err
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (order *domain.Order, err error) {
	err = s.env.Run(ctx, useCaseGetOrder, "GetOrder",
		[]observability.Field{observability.F("order_id", orderID)},
		[]attribute.KeyValue{attribute.String("order.id", orderID)},
		func(ctx context.Context, _ trace.Span) error {
			var err error
			order, err = s.shop.GetOrder(ctx, orderID)
			return err
		},
	)
	return order, err
}

func (s *Service) ListProducts(ctx context.Context) (products []domain.Product, err error) {
	err = s.env.Run(ctx, useCaseListProducts, "ListProducts", nil, nil,
		func(ctx context.Context, span trace.Span) error {
			var err error
			products, err = s.shop.ListProducts(ctx)
			span.SetAttributes(attribute.Int("products.count", len(products)))
			return err
		},
	)
	if products == nil {
		products = []domain.Product{}
	}
	return products, err
}

func (s *Service) GetVariants(ctx context.Context, productID string) (variants []domain.Variant, err error) {
	err = s.env.Run(ctx, useCaseGetVariants, "GetVariants",
		[]observability.Field{observability.F("product_id", productID)},
		[]attribute.KeyValue{attribute.String("product.id", productID)},
		func(ctx context.Context, span trace.Span) error {
			var err error
			variants, err = s.shop.GetVariants(ctx, productID)
			span.SetAttributes(attribute.Int("variants.count", len(variants)))
			return err
		},
	)
	if variants == nil {
		variants = []domain.Variant{}
	}
	return variants, err
}

// ComputeStock totals the deliverables of every variant of a product.
// A variant whose stock cannot be read counts as zero; failures are logged, not returned.
func (s *Service) ComputeStock(ctx context.Context, productID string) int {
	total := 0
	_ = s.env.Run(ctx, useCaseComputeStock, "ComputeStock",
		[]observability.Field{observability.F("product_id", productID)},
		[]attribute.KeyValue{attribute.String("product.id", productID)},
		func(ctx context.Context, span trace.Span) error {
			logger := logctx.FromOr(ctx, s.log)

			variants, err := s.shop.GetVariants(ctx, productID)
			if err != nil {
				logger.Warn("variants_unavailable",
					observability.F("product_id", productID),
					observability.F("error", err.Error()),
				)
			}

			failed := 0
			for _, v := range variants {
				items, err := s.shop.GetStock(ctx, productID, v.ID.String())
				if err != nil {
					failed++
					logger.Warn("variant_stock_unavailable",
						observability.F("product_id", productID),
						observability.F("variant_id", v.ID.String()),
						observability.F("error", err.Error()),
					)
					continue
				}
				total += len(items)
			}

			span.SetAttributes(
				attribute.Int("variants.count", len(variants)),
				attribute.Int("variants.failed", failed),
				attribute.Int("stock.total", total),
			)
			return nil
		},
	)
	return total
}
