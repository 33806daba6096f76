package commerce

import (
	"context"

	domain "github.com/sellauth-tools/stockbot/internal/domain/commerce"
)

// Shop is the read side of the shop API. Failed reads return the documented
// empty value (nil or an empty slice) alongside the reason.
type Shop interface {
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetVariants(ctx context.Context, productID string) ([]domain.Variant, error)
	GetStock(ctx context.Context, productID, variantID string) (domain.Lines, error)
}
