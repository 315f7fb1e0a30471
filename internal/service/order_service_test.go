package service

import (
	"context"
	"testing"

	"food-order-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderEmptyCart(t *testing.T) {
	fs := newFakeStore()
	pub := &fakePublisher{}
	svc := NewOrderService(fs, pub)

	_, err := svc.PlaceOrder(context.Background(), models.Identity{UserID: 1}, &PlaceOrderRequest{})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, fs.orders)
	assert.Empty(t, pub.placed)
}

func TestPlaceOrderSnapshotsCartAndClearsIt(t *testing.T) {
	fs := newFakeStore()
	productA := fs.addProduct("Pizza", "10.00")
	productB := fs.addProduct("Cola", "5.50")
	pub := &fakePublisher{}
	cart := NewCartService(fs)
	svc := NewOrderService(fs, pub)
	actor := models.Identity{UserID: 42}
	ctx := context.Background()

	_, err := cart.AddItem(ctx, actor, &AddCartItemRequest{ProductID: productA.ID, Quantity: qty(2)})
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, actor, &AddCartItemRequest{ProductID: productB.ID, Quantity: qty(1)})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, actor, &PlaceOrderRequest{DeliveryAddress: "12 Noodle St"})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.50")),
		"total = %s", order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.DefaultPaymentMethod, order.PaymentMethod)
	assert.Equal(t, "12 Noodle St", order.DeliveryAddress)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].Price.Equal(productA.Price))
	assert.True(t, order.Items[1].Price.Equal(productB.Price))

	items, err := cart.List(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.Len(t, pub.placed, 1)
	assert.Equal(t, order.ID, pub.placed[0].OrderID)
	assert.Equal(t, models.EventTypeOrderPlaced, pub.placed[0].EventType)
	assert.Len(t, pub.placed[0].Items, 2)
}

func TestPlaceOrderKeepsSnapshotPriceAfterCatalogChange(t *testing.T) {
	fs := newFakeStore()
	product := fs.addProduct("Pizza", "10.00")
	pub := &fakePublisher{}
	cart := NewCartService(fs)
	svc := NewOrderService(fs, pub)
	actor := models.Identity{UserID: 1}
	ctx := context.Background()

	_, err := cart.AddItem(ctx, actor, &AddCartItemRequest{ProductID: product.ID, Quantity: qty(1)})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, actor, &PlaceOrderRequest{})
	require.NoError(t, err)

	// A later price change does not touch the recorded snapshot.
	product.Price = decimal.RequireFromString("99.00")
	require.NoError(t, fs.UpdateProduct(ctx, product))

	got, err := svc.GetOrder(ctx, actor, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func TestGetOrderScoping(t *testing.T) {
	fs := newFakeStore()
	product := fs.addProduct("Pizza", "10.00")
	pub := &fakePublisher{}
	cart := NewCartService(fs)
	svc := NewOrderService(fs, pub)
	owner := models.Identity{UserID: 1}
	ctx := context.Background()

	_, err := cart.AddItem(ctx, owner, &AddCartItemRequest{ProductID: product.ID, Quantity: qty(1)})
	require.NoError(t, err)
	order, err := svc.PlaceOrder(ctx, owner, &PlaceOrderRequest{})
	require.NoError(t, err)

	// Another user gets not-found, not forbidden.
	_, err = svc.GetOrder(ctx, models.Identity{UserID: 2}, order.ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	// Staff can read anyone's order.
	got, err := svc.GetOrder(ctx, models.Identity{UserID: 3, IsStaff: true}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestUpdateStatus(t *testing.T) {
	fs := newFakeStore()
	product := fs.addProduct("Pizza", "10.00")
	pub := &fakePublisher{}
	cart := NewCartService(fs)
	svc := NewOrderService(fs, pub)
	owner := models.Identity{UserID: 1}
	staff := models.Identity{UserID: 9, IsStaff: true}
	ctx := context.Background()

	_, err := cart.AddItem(ctx, owner, &AddCartItemRequest{ProductID: product.ID, Quantity: qty(1)})
	require.NoError(t, err)
	order, err := svc.PlaceOrder(ctx, owner, &PlaceOrderRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, owner, order.ID, models.OrderStatusProcessing)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = svc.UpdateStatus(ctx, staff, order.ID, "shipped")
	assert.Equal(t, KindValidation, KindOf(err))

	updated, err := svc.UpdateStatus(ctx, staff, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)

	require.Len(t, pub.statusChanged, 1)
	assert.Equal(t, models.OrderStatusPending, pub.statusChanged[0].OldStatus)
	assert.Equal(t, models.OrderStatusCompleted, pub.statusChanged[0].NewStatus)
	assert.Equal(t, staff.UserID, pub.statusChanged[0].ChangedBy)
}

func TestListOrdersScoping(t *testing.T) {
	fs := newFakeStore()
	product := fs.addProduct("Pizza", "10.00")
	pub := &fakePublisher{}
	cart := NewCartService(fs)
	svc := NewOrderService(fs, pub)
	ctx := context.Background()

	for _, userID := range []int64{1, 2} {
		actor := models.Identity{UserID: userID}
		_, err := cart.AddItem(ctx, actor, &AddCartItemRequest{ProductID: product.ID, Quantity: qty(1)})
		require.NoError(t, err)
		_, err = svc.PlaceOrder(ctx, actor, &PlaceOrderRequest{})
		require.NoError(t, err)
	}

	mine, err := svc.ListOrders(ctx, models.Identity{UserID: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].UserID)

	all, err := svc.ListOrders(ctx, models.Identity{UserID: 9, IsStaff: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
