package sellauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
)

const (
	EndpointGetInvoice   = "get_invoice"
	EndpointGetOrder     = "get_order"
	EndpointListProducts = "list_products"
	EndpointGetVariants  = "get_variants"
	EndpointGetStock     = "get_stock"
	EndpointAppendStock  = "append_stock"
)

var endpoints = []string{
	EndpointGetInvoice,
	EndpointGetOrder,
	EndpointListProducts,
	EndpointGetVariants,
	EndpointGetStock,
	EndpointAppendStock,
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type appendBody struct {
	Deliverables []string `json:"deliverables"`
}

// Shop scopes API calls to one shop. Every read returns its empty value
// (nil or an empty slice) together with the reason when the call fails.
type Shop struct {
	client *Client
	base   string
}

func NewShop(client *Client, baseURL, shopID string) *Shop {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Shop{
		client: client,
		base:   strings.TrimRight(baseURL, "/") + "/shops/" + url.PathEscape(shopID),
	}
}

func (s *Shop) url(segments ...string) string {
	var b strings.Builder
	b.WriteString(s.base)
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

func (s *Shop) get(ctx context.Context, endpoint string, segments ...string) (json.RawMessage, error) {
	res := s.client.Do(ctx, Request{Endpoint: endpoint, Method: http.MethodGet, URL: s.url(segments...)})
	if !res.OK() {
		if res.Status == http.StatusNotFound {
			return nil, fmt.Errorf("sellauth: %s: %w", endpoint, commerce.ErrNotFound)
		}
		return nil, res.Failure(endpoint)
	}
	return res.Body, nil
}

// GetInvoice fetches an invoice. The API serves invoices from the orders resource.
func (s *Shop) GetInvoice(ctx context.Context, invoiceID string) (*commerce.Order, error) {
	return s.order(ctx, EndpointGetInvoice, invoiceID)
}

func (s *Shop) GetOrder(ctx context.Context, orderID string) (*commerce.Order, error) {
	return s.order(ctx, EndpointGetOrder, orderID)
}

func (s *Shop) order(ctx context.Context, endpoint, id string) (*commerce.Order, error) {
	body, err := s.get(ctx, endpoint, "orders", id)
	if err != nil {
		return nil, err
	}
	var env envelope[*commerce.Order]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("sellauth: %s: decode: %w", endpoint, err)
	}
	if env.Data.IsEmpty() {
		return nil, fmt.Errorf("sellauth: %s: %w", endpoint, commerce.ErrNotFound)
	}
	return env.Data, nil
}

func (s *Shop) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	body, err := s.get(ctx, EndpointListProducts, "products")
	if err != nil {
		return []commerce.Product{}, err
	}
	var env envelope[[]commerce.Product]
	if err := json.Unmarshal(body, &env); err != nil {
		return []commerce.Product{}, fmt.Errorf("sellauth: %s: decode: %w", EndpointListProducts, err)
	}
	if env.Data == nil {
		return []commerce.Product{}, nil
	}
	return env.Data, nil
}

func (s *Shop) GetVariants(ctx context.Context, productID string) ([]commerce.Variant, error) {
	body, err := s.get(ctx, EndpointGetVariants, "products", productID)
	if err != nil {
		return []commerce.Variant{}, err
	}
	var env envelope[*commerce.Product]
	if err := json.Unmarshal(body, &env); err != nil {
		return []commerce.Variant{}, fmt.Errorf("sellauth: %s: decode: %w", EndpointGetVariants, err)
	}
	if env.Data == nil || env.Data.Variants == nil {
		return []commerce.Variant{}, nil
	}
	return env.Data.Variants, nil
}

// GetStock lists the deliverables held by one variant. The API answers with a bare array.
func (s *Shop) GetStock(ctx context.Context, productID, variantID string) (commerce.Lines, error) {
	body, err := s.get(ctx, EndpointGetStock, "products", productID, "deliverables", variantID)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("sellauth: %s: body is not an array", EndpointGetStock)
	}
	var items commerce.Lines
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("sellauth: %s: decode: %w", EndpointGetStock, err)
	}
	if items == nil {
		items = commerce.Lines{}
	}
	return items, nil
}

// AppendStock adds items to a variant in a single call. The receipt always
// carries whatever status the API returned; the error is informational.
func (s *Shop) AppendStock(ctx context.Context, productID, variantID string, items []string) (commerce.Receipt, error) {
	if items == nil {
		items = []string{}
	}
	res := s.client.Do(ctx, Request{
		Endpoint: EndpointAppendStock,
		Method:   http.MethodPut,
		URL:      s.url("products", productID, "deliverables", "append", variantID),
		Body:     appendBody{Deliverables: items},
	})
	receipt := commerce.Receipt{Status: res.Status, Body: res.Body}
	if res.Err != nil {
		return receipt, res.Err
	}
	if !receipt.Succeeded() {
		return receipt, &StatusError{Endpoint: EndpointAppendStock, Status: res.Status}
	}
	return receipt, nil
}
