package store

import (
	"context"
	"database/sql"
	"fmt"

	"food-order-service/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type checkoutLine struct {
	ID        int64           `db:"id"`
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

// computeTotal sums unit price times quantity over the locked cart lines.
func computeTotal(lines []checkoutLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CheckoutCart converts the user's cart into an order inside a single
// transaction: it locks the cart rows, snapshots current product prices,
// creates the order with its lines and deletes exactly those rows. A
// concurrent checkout for the same user blocks on the row locks and then
// fails with ErrEmptyCart; a line added concurrently is not in the
// snapshot and survives in the cart. Any error rolls the whole
// transaction back.
func (s *Store) CheckoutCart(ctx context.Context, userID int64, deliveryAddress, paymentMethod, notes string) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lines []checkoutLine
	err = tx.SelectContext(ctx, &lines, `
		SELECT ci.id, ci.product_id, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.id
		FOR UPDATE OF ci`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		UserID:          userID,
		TotalAmount:     computeTotal(lines),
		Status:          models.OrderStatusPending,
		DeliveryAddress: deliveryAddress,
		PaymentMethod:   paymentMethod,
		Notes:           notes,
	}

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (user_id, total_amount, status, delivery_address, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		order.UserID, order.TotalAmount, order.Status,
		order.DeliveryAddress, order.PaymentMethod, order.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := models.OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}

		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			item.OrderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}

		order.Items = append(order.Items, item)
	}

	// Delete only the locked lines. A blanket user_id delete would also
	// take out a row committed between the lock and this statement.
	lineIDs := make([]int64, len(lines))
	for i, line := range lines {
		lineIDs[i] = line.ID
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = ANY($1)", pq.Array(lineIDs)); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first.
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// GetAllOrders retrieves every order, newest first. Staff only.
func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return nil
}
