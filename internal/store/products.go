package store

import (
	"context"
	"database/sql"
	"fmt"

	"food-order-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateProduct inserts a new catalog entry.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, image, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, product, query,
		product.Name, product.Description, product.Price, product.Image, product.Category)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products, optionally filtered by category.
func (s *Store) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	var products []models.Product
	if category != "" {
		err := s.db.SelectContext(ctx, &products,
			"SELECT * FROM products WHERE category = $1 ORDER BY id", category)
		return products, err
	}
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct overwrites the mutable product fields.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, image = $4, category = $5
		 WHERE id = $6`,
		product.Name, product.Description, product.Price, product.Image, product.Category, product.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", product.ID, ErrNotFound)
	}
	return nil
}

// ProductOrdered reports whether the product appears in any order line.
// Such products cannot be deleted; the recorded order history references them.
func (s *Store) ProductOrdered(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)", id)
	return exists, err
}

// DeleteProduct removes a product. Cart lines referencing it cascade.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}
