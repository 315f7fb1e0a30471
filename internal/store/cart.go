package store

import (
	"context"
	"database/sql"
	"fmt"

	"food-order-service/internal/models"
)

// UpsertCartItem adds quantity to the user's line for the product,
// creating the line if none exists. The UNIQUE (user_id, product_id)
// constraint collapses concurrent adds into a single row.
func (s *Store) UpsertCartItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, product_id, quantity, created_at`

	err := s.db.GetContext(ctx, &item, query, userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartItem retrieves one cart line scoped to its owner.
func (s *Store) GetCartItem(ctx context.Context, userID, itemID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		"SELECT * FROM cart_items WHERE id = $1 AND user_id = $2", itemID, userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItemQuantity overwrites the quantity of an owner-scoped line.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		`UPDATE cart_items SET quantity = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING id, user_id, product_id, quantity, created_at`,
		quantity, itemID, userID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCartItem removes an owner-scoped line.
func (s *Store) DeleteCartItem(ctx context.Context, userID, itemID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

// ListCartItems retrieves the user's cart lines in insertion order.
func (s *Store) ListCartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM cart_items WHERE user_id = $1 ORDER BY id", userID)
	return items, err
}
