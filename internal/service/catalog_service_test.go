package service

import (
	"context"
	"testing"
	"time"

	"food-order-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogMutationsRequireStaff(t *testing.T) {
	svc := NewCatalogService(newFakeStore(), newFakeCache(), time.Minute)
	user := models.Identity{UserID: 1}
	ctx := context.Background()

	req := &ProductRequest{Name: "Pho", Price: decimal.RequireFromString("9.00")}

	_, err := svc.Create(ctx, user, req)
	assert.Equal(t, KindForbidden, KindOf(err))
	_, err = svc.Update(ctx, user, 1, req)
	assert.Equal(t, KindForbidden, KindOf(err))
	err = svc.Delete(ctx, user, 1)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewCatalogService(newFakeStore(), newFakeCache(), time.Minute)
	staff := models.Identity{UserID: 1, IsStaff: true}
	ctx := context.Background()

	_, err := svc.Create(ctx, staff, &ProductRequest{Price: decimal.RequireFromString("9.00")})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Create(ctx, staff, &ProductRequest{Name: "Pho", Price: decimal.Zero})
	assert.Equal(t, KindValidation, KindOf(err))

	product, err := svc.Create(ctx, staff, &ProductRequest{Name: "Pho", Price: decimal.RequireFromString("9.00")})
	require.NoError(t, err)
	assert.Equal(t, "main", product.Category)
	assert.NotZero(t, product.ID)
}

func TestListUsesCache(t *testing.T) {
	fs := newFakeStore()
	fs.addProduct("Pho", "9.00")
	cache := newFakeCache()
	svc := NewCatalogService(fs, cache, time.Minute)
	ctx := context.Background()

	first, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A product added behind the cache is invisible until invalidation.
	fs.addProduct("Banh Mi", "6.00")
	stale, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	staff := models.Identity{UserID: 1, IsStaff: true}
	_, err = svc.Create(ctx, staff, &ProductRequest{Name: "Bun Cha", Price: decimal.RequireFromString("8.00")})
	require.NoError(t, err)

	fresh, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestDeleteOrderedProductRejected(t *testing.T) {
	fs := newFakeStore()
	product := fs.addProduct("Pho", "9.00")
	cart := NewCartService(fs)
	orders := NewOrderService(fs, &fakePublisher{})
	svc := NewCatalogService(fs, newFakeCache(), time.Minute)
	owner := models.Identity{UserID: 1}
	staff := models.Identity{UserID: 2, IsStaff: true}
	ctx := context.Background()

	_, err := cart.AddItem(ctx, owner, &AddCartItemRequest{ProductID: product.ID, Quantity: qty(1)})
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, owner, &PlaceOrderRequest{})
	require.NoError(t, err)

	err = svc.Delete(ctx, staff, product.ID)
	assert.Equal(t, KindValidation, KindOf(err))

	// A never-ordered product deletes fine.
	other := fs.addProduct("Banh Mi", "6.00")
	require.NoError(t, svc.Delete(ctx, staff, other.ID))

	_, err = svc.Get(ctx, other.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
