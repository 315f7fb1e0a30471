package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"food-order-service/internal/models"
	"food-order-service/internal/store"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for *store.Store that honors the
// same contracts: owner scoping, ErrNotFound wrapping and the
// all-or-nothing checkout.
type fakeStore struct {
	products []*models.Product
	cart     []*models.CartItem
	orders   []*models.Order
	items    map[int64][]models.OrderItem
	users    []*models.User
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[int64][]models.OrderItem)}
}

func qty(n int) *int {
	return &n
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addProduct(name, price string) *models.Product {
	p := &models.Product{
		ID:        f.id(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  "main",
		CreatedAt: time.Now(),
	}
	f.products = append(f.products, p)
	return p
}

func (f *fakeStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		for _, p := range f.products {
			if p.ID == id {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = f.id()
	product.CreatedAt = time.Now()
	cp := *product
	f.products = append(f.products, &cp)
	return nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	for i, p := range f.products {
		if p.ID == product.ID {
			cp := *product
			f.products[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", product.ID, store.ErrNotFound)
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id int64) error {
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) ProductOrdered(ctx context.Context, id int64) (bool, error) {
	for _, lines := range f.items {
		for _, line := range lines {
			if line.ProductID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeStore) UpsertCartItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	for _, item := range f.cart {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			cp := *item
			return &cp, nil
		}
	}
	item := &models.CartItem{
		ID:        f.id(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	f.cart = append(f.cart, item)
	cp := *item
	return &cp, nil
}

func (f *fakeStore) UpdateCartItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.CartItem, error) {
	for _, item := range f.cart {
		if item.ID == itemID && item.UserID == userID {
			item.Quantity = quantity
			cp := *item
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("cart item %d: %w", itemID, store.ErrNotFound)
}

func (f *fakeStore) DeleteCartItem(ctx context.Context, userID, itemID int64) error {
	for i, item := range f.cart {
		if item.ID == itemID && item.UserID == userID {
			f.cart = append(f.cart[:i], f.cart[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cart item %d: %w", itemID, store.ErrNotFound)
}

func (f *fakeStore) ListCartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range f.cart {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeStore) CheckoutCart(ctx context.Context, userID int64, deliveryAddress, paymentMethod, notes string) (*models.Order, error) {
	var lines []models.CartItem
	for _, item := range f.cart {
		if item.UserID == userID {
			lines = append(lines, *item)
		}
	}
	if len(lines) == 0 {
		return nil, store.ErrEmptyCart
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := f.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderItems = append(orderItems, models.OrderItem{
			ID:        f.id(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	order := &models.Order{
		ID:              f.id(),
		UserID:          userID,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		DeliveryAddress: deliveryAddress,
		PaymentMethod:   paymentMethod,
		Notes:           notes,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	order.Items = orderItems

	f.orders = append(f.orders, order)
	f.items[order.ID] = orderItems

	// Only the snapshotted lines are cleared, matching the store.
	snapshotted := make(map[int64]bool, len(lines))
	for _, line := range lines {
		snapshotted[line.ID] = true
	}
	var kept []*models.CartItem
	for _, item := range f.cart {
		if !snapshotted[item.ID] {
			kept = append(kept, item)
		}
	}
	f.cart = kept

	cp := *order
	return &cp, nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			cp := *o
			cp.Items = nil
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var out []models.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == userID {
			out = append(out, *f.orders[i])
		}
	}
	return out, nil
}

func (f *fakeStore) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		out = append(out, *f.orders[i])
	}
	return out, nil
}

func (f *fakeStore) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	for _, o := range f.orders {
		if o.ID == orderID {
			o.Status = status
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = f.id()
	user.CreatedAt = time.Now()
	cp := *user
	f.users = append(f.users, &cp)
	return nil
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, store.ErrNotFound)
}

func (f *fakeStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	placed        []*models.OrderPlacedEvent
	statusChanged []*models.OrderStatusChangedEvent
}

func (f *fakePublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	f.placed = append(f.placed, event)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	f.statusChanged = append(f.statusChanged, event)
	return nil
}

// fakeCache is an in-memory Cache without TTL expiry.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}
