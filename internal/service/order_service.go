package service

import (
	"context"
	"errors"
	"time"

	"food-order-service/internal/models"
	"food-order-service/internal/store"
	"food-order-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderRepository is the persistence surface OrderService needs.
// CheckoutCart must run as a single all-or-nothing transaction.
type OrderRepository interface {
	CheckoutCart(ctx context.Context, userID int64, deliveryAddress, paymentMethod, notes string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) error
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

// EventPublisher publishes order lifecycle events.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// OrderService handles checkout and order administration.
type OrderService struct {
	repo      OrderRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// PlaceOrderRequest represents a checkout payload.
type PlaceOrderRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
}

// PlaceOrder converts the actor's cart into a pending order. The cart
// must be non-empty; prices are snapshotted at checkout time and the
// cart is cleared in the same transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, actor models.Identity, req *PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.DefaultPaymentMethod
	}

	order, err := s.repo.CheckoutCart(ctx, actor.UserID, req.DeliveryAddress, paymentMethod, req.Notes)
	if err != nil {
		if errors.Is(err, store.ErrEmptyCart) {
			util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
			return nil, Validationf("cart is empty")
		}
		util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
		return nil, Unexpectedf(err, "checkout failed")
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", actor.UserID),
		zap.String("total", order.TotalAmount.String()))

	if err := s.resolveProducts(ctx, order.Items); err != nil {
		s.logger.Warn("Failed to resolve order products", zap.Error(err))
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       orderLineData(order.Items),
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return order, nil
}

// GetOrder returns one order with its lines. Owners see their own
// orders; staff see all. Anyone else gets a not-found, never a hint
// that the order exists.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Identity, orderID int64) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("order not found")
		}
		return nil, Unexpectedf(err, "failed to load order")
	}

	if order.UserID != actor.UserID && !actor.IsStaff {
		return nil, NotFoundf("order not found")
	}

	items, err := s.repo.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, Unexpectedf(err, "failed to load order items")
	}
	order.Items = items

	if err := s.resolveProducts(ctx, order.Items); err != nil {
		s.logger.Warn("Failed to resolve order products", zap.Error(err))
	}

	return order, nil
}

// ListOrders returns the actor's orders newest first, or every order
// for staff.
func (s *OrderService) ListOrders(ctx context.Context, actor models.Identity) ([]models.Order, error) {
	var (
		orders []models.Order
		err    error
	)
	if actor.IsStaff {
		orders, err = s.repo.GetAllOrders(ctx)
	} else {
		orders, err = s.repo.GetOrdersByUserID(ctx, actor.UserID)
	}
	if err != nil {
		return nil, Unexpectedf(err, "failed to list orders")
	}
	return orders, nil
}

// UpdateStatus sets an order's status. Staff only. Any known status is
// accepted regardless of the current one; see DESIGN.md for why the
// transition graph is not enforced.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Identity, orderID int64, status string) (*models.Order, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}
	if !models.KnownStatus(status) {
		return nil, Validationf("unknown order status %q", status)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("order not found")
		}
		return nil, Unexpectedf(err, "failed to load order")
	}

	oldStatus := order.Status
	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("order not found")
		}
		return nil, Unexpectedf(err, "failed to update order status")
	}
	order.Status = status

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", status),
		zap.Int64("changed_by", actor.UserID))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: status,
		ChangedBy: actor.UserID,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

func (s *OrderService) resolveProducts(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}
	return nil
}

func orderLineData(items []models.OrderItem) []models.OrderLineData {
	lines := make([]models.OrderLineData, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLineData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}
	return lines
}
