package commerce

import (
	"context"
	"errors"
	"sync"
	"testing"

	domain "github.com/sellauth-tools/stockbot/internal/domain/commerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShop struct {
	mu          sync.Mutex
	orders      map[string]*domain.Order
	products    []domain.Product
	variants    map[string][]domain.Variant
	variantsErr error
	stock       map[string]domain.Lines
	stockErr    map[string]error
	calls       []string
}

func (f *fakeShop) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeShop) GetInvoice(_ context.Context, id string) (*domain.Order, error) {
	f.record("invoice:" + id)
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeShop) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	f.record("order:" + id)
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeShop) ListProducts(context.Context) ([]domain.Product, error) {
	f.record("products")
	return f.products, nil
}

func (f *fakeShop) GetVariants(_ context.Context, pid string) ([]domain.Variant, error) {
	f.record("variants:" + pid)
	if f.variantsErr != nil {
		return []domain.Variant{}, f.variantsErr
	}
	return f.variants[pid], nil
}

func (f *fakeShop) GetStock(_ context.Context, pid, vid string) (domain.Lines, error) {
	f.record("stock:" + pid + "/" + vid)
	if err := f.stockErr[vid]; err != nil {
		return nil, err
	}
	return f.stock[vid], nil
}

func lines(n int) domain.Lines {
	out := make(domain.Lines, n)
	for i := range out {
		out[i] = "K"
	}
	return out
}

func TestComputeStockSumsVariants(t *testing.T) {
	orders := [][]string{{"a", "b", "c"}, {"c", "b", "a"}, {"b", "c", "a"}}
	counts := map[string]int{"a": 3, "b": 0, "c": 5}

	for _, order := range orders {
		t.Run(order[0]+order[1]+order[2], func(t *testing.T) {
			shop := &fakeShop{variants: map[string][]domain.Variant{}, stock: map[string]domain.Lines{}}
			for _, id := range order {
				shop.variants["p"] = append(shop.variants["p"], domain.Variant{ID: domain.Text(id)})
				shop.stock[id] = lines(counts[id])
			}

			assert.Equal(t, 8, NewService(shop, nil).ComputeStock(context.Background(), "p"))
		})
	}
}

func TestComputeStockCountsFailedVariantAsZero(t *testing.T) {
	shop := &fakeShop{
		variants: map[string][]domain.Variant{"p": {{ID: "a"}, {ID: "b"}}},
		stock:    map[string]domain.Lines{"a": lines(4), "b": lines(9)},
		stockErr: map[string]error{"b": errors.New("timeout")},
	}

	assert.Equal(t, 4, NewService(shop, nil).ComputeStock(context.Background(), "p"))
}

func TestComputeStockWithoutVariantsIsZero(t *testing.T) {
	shop := &fakeShop{variantsErr: errors.New("unreachable")}

	assert.Zero(t, NewService(shop, nil).ComputeStock(context.Background(), "p"))
	assert.Equal(t, []string{"variants:p"}, shop.calls)
}

func TestGetOrderPassesThroughNotFound(t *testing.T) {
	shop := &fakeShop{orders: map[string]*domain.Order{"1": {ID: "1", Email: "x@y.z"}}}
	svc := NewService(shop, nil)

	o, err := svc.GetOrder(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, domain.Text("x@y.z"), o.Email)

	o, err = svc.GetInvoice(context.Background(), "2")
	assert.Nil(t, o)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListsNeverReturnNil(t *testing.T) {
	shop := &fakeShop{variants: map[string][]domain.Variant{}}
	svc := NewService(shop, nil)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)

	variants, err := svc.GetVariants(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, variants)
}
