package store

import (
	"context"
	"time"

	"food-order-service/internal/models"

	"github.com/shopspring/decimal"
)

// TotalSales sums total_amount over completed orders.
func (s *Store) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = $1",
		models.OrderStatusCompleted)
	return total, err
}

// SalesSince sums completed-order totals created at or after since.
func (s *Store) SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total,
		"SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = $1 AND created_at >= $2",
		models.OrderStatusCompleted, since)
	return total, err
}

// GetOrderStats counts orders grouped by status.
func (s *Store) GetOrderStats(ctx context.Context) (*models.OrderStats, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.OrderStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.OrderStatusPending:
			stats.Pending = count
		case models.OrderStatusProcessing:
			stats.Processing = count
		case models.OrderStatusCompleted:
			stats.Completed = count
		case models.OrderStatusCancelled:
			stats.Cancelled = count
		}
	}
	return stats, rows.Err()
}

// GetTopProducts groups order lines by product, summing quantity and
// revenue, ordered by quantity sold.
func (s *Store) GetTopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	var sales []models.ProductSales
	err := s.db.SelectContext(ctx, &sales, `
		SELECT oi.product_id,
		       p.name,
		       SUM(oi.quantity) AS total_quantity,
		       SUM(oi.price * oi.quantity) AS total_revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		GROUP BY oi.product_id, p.name
		ORDER BY total_quantity DESC
		LIMIT $1`, limit)
	return sales, err
}

// GetDailySales sums completed-order totals per calendar date within the
// window, ascending by date.
func (s *Store) GetDailySales(ctx context.Context, since time.Time) ([]models.DailySales, error) {
	var sales []models.DailySales
	err := s.db.SelectContext(ctx, &sales, `
		SELECT DATE(created_at) AS date,
		       SUM(total_amount) AS total
		FROM orders
		WHERE status = $1 AND created_at >= $2
		GROUP BY DATE(created_at)
		ORDER BY date`,
		models.OrderStatusCompleted, since)
	return sales, err
}
