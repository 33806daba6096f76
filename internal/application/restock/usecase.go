// Package restock appends deliverables submitted through the restock flow.
package restock

import (
	"context"
	"errors"

	"github.com/sellauth-tools/stockbot/internal/application"
	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
	domain "github.com/sellauth-tools/stockbot/internal/domain/restock"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	restockService      = "restock-service"
	useCaseSubmitStock  = "restock.submit_stock"
	submitStockSpanName = "SubmitStock"
)

// StockAppender is the write side of the shop API.
type StockAppender interface {
	AppendStock(ctx context.Context, productID, variantID string, items []string) (commerce.Receipt, error)
}

type Result struct {
	// Submitted is the number of items sent in the single append call.
	Submitted int
	// Status is the HTTP status the API answered with; 0 when the call never completed.
	Status int
	// Confirmed reports whether the API accepted the batch. The user is told
	// "Added N items" either way.
	Confirmed bool
}

var _ application.UseCase[domain.Submission, *Result] = (*SubmitStockUseCase)(nil)

type SubmitStockUseCase struct {
	shop StockAppender
	env  *application.Envelope
}

func NewSubmitStockUseCase(shop StockAppender, tel observability.Observability) *SubmitStockUseCase {
	return &SubmitStockUseCase{
		shop: shop,
		env:  application.NewEnvelope(restockService, tel),
	}
}

// Execute sends the whole batch once. There is no retry and no dedup; a
// resubmitted form appends again.
func (uc *SubmitStockUseCase) Execute(ctx context.Context, cmd domain.Submission) (*Result, error) {
	result := &Result{Submitted: len(cmd.Items)}
	if cmd.ProductID == "" || cmd.VariantID == "" {
		return result, errors.New("restock: product and variant are required")
	}

	err := uc.env.Run(ctx, useCaseSubmitStock, submitStockSpanName,
		[]observability.Field{
			observability.F("product_id", cmd.ProductID),
			observability.F("variant_id", cmd.VariantID),
			observability.F("items", len(cmd.Items)),
		},
		[]attribute.KeyValue{
			attribute.String("product.id", cmd.ProductID),
			attribute.String("variant.id", cmd.VariantID),
			attribute.Int("restock.items", len(cmd.Items)),
		},
		func(ctx context.Context, span trace.Span) error {
			receipt, err := uc.shop.AppendStock(ctx, cmd.ProductID, cmd.VariantID, cmd.Items)
			result.Status = receipt.Status
			result.Confirmed = err == nil && receipt.Succeeded()
			span.SetAttributes(attribute.Int("http.response.status_code", receipt.Status))
			return err
		},
	)
	return result, err
}
