package services_test

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingCartRepository counts writes so tests can tell whether a cart was saved.
type countingCartRepository struct {
	*repositories.MockCartRepository
	saves int
}

func (r *countingCartRepository) Save(ctx context.Context, sessionID string, cart *models.Cart) error {
	r.saves++
	return r.MockCartRepository.Save(ctx, sessionID, cart)
}

func newCartService(t *testing.T) (*services.CartService, *countingCartRepository, *models.Product) {
	t.Helper()
	products := repositories.NewMockProductRepository()
	phone := &models.Product{Name: "Phone", Price: decimal.NewFromInt(100), Discount: 10, Stock: 5, Colors: "black,white", Image1: "phone.jpg"}
	require.NoError(t, products.Create(context.Background(), phone))

	carts := &countingCartRepository{MockCartRepository: repositories.NewMockCartRepository()}
	return services.NewCartService(carts, products, pricing.NewEngine(pricing.DefaultTaxRate), zap.NewNop()), carts, phone
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	svc, carts, phone := newCartService(t)

	added, err := svc.AddItem(ctx, "s1", phone.ID, 2, "")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, carts.saves)

	cart, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	item, ok := cart.Get(phone.ID)
	require.True(t, ok)
	assert.Equal(t, "black", item.Color, "defaults to the first color")
	assert.Equal(t, "phone.jpg", item.Image)
	assert.Equal(t, "Phone", item.Name)

	// duplicate add is reported, not failed, and does not write
	added, err = svc.AddItem(ctx, "s1", phone.ID, 7, "white")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, carts.saves)
	cart, _ = svc.Get(ctx, "s1")
	item, _ = cart.Get(phone.ID)
	assert.Equal(t, 2, item.Quantity)

	_, err = svc.AddItem(ctx, "s1", "missing", 1, "")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestCartService_AddItemRejectsBadQuantity(t *testing.T) {
	svc, carts, phone := newCartService(t)
	_, err := svc.AddItem(context.Background(), "s1", phone.ID, 0, "")
	assert.ErrorIs(t, err, models.ErrInvalidLineItem)
	assert.Equal(t, 0, carts.saves)
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	svc, carts, phone := newCartService(t)

	err := svc.UpdateItem(ctx, "s1", phone.ID, 3, "white")
	assert.ErrorIs(t, err, models.ErrLineItemNotFound)

	_, err = svc.AddItem(ctx, "s1", phone.ID, 1, "black")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateItem(ctx, "s1", phone.ID, 3, "white"))

	summary, err := svc.Summary(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, "270.00", summary.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "16.20", summary.Totals.Tax.StringFixed(2))
	assert.Equal(t, "286.20", summary.Totals.GrandTotal.StringFixed(2))

	saves := carts.saves
	removed, err := svc.RemoveItem(ctx, "s1", "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, saves, carts.saves, "a no-op remove does not write")

	require.NoError(t, svc.Clear(ctx, "s1"))
	cart, _ := svc.Get(ctx, "s1")
	assert.True(t, cart.IsEmpty())
	assert.True(t, svc.Totals(cart).GrandTotal.IsZero())

	saves = carts.saves
	require.NoError(t, svc.Clear(ctx, "s1"))
	assert.Equal(t, saves, carts.saves, "clearing an empty cart does not write")

	_, err = svc.AddItem(ctx, "s1", phone.ID, 1, "black")
	require.NoError(t, err)
	removed, err = svc.RemoveItem(ctx, "s1", phone.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, _, phone := newCartService(t)

	_, err := svc.AddItem(ctx, "s1", phone.ID, 1, "")
	require.NoError(t, err)

	other, err := svc.Get(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}
