package service

import (
	"context"
	"errors"
	"time"

	"food-order-service/internal/models"
	"food-order-service/internal/store"
	"food-order-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRepository is the persistence surface CatalogService needs.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ProductOrdered(ctx context.Context, id int64) (bool, error)
}

// CatalogService serves the product catalog. Reads are public and
// cached; mutations are staff only and drop the cache.
type CatalogService struct {
	products ProductRepository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductRepository, cache Cache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		products: products,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ProductRequest carries the mutable product fields.
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
}

// List returns all products, optionally filtered by category.
func (s *CatalogService) List(ctx context.Context, category string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.List")
	defer span.End()

	key := catalogCachePrefix + category

	var cached []models.Product
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Catalog cache read failed", zap.Error(err))
	}
	if hit {
		util.CacheHitsTotal.WithLabelValues("catalog").Inc()
		return cached, nil
	}
	util.CacheMissesTotal.WithLabelValues("catalog").Inc()

	products, err := s.products.GetProducts(ctx, category)
	if err != nil {
		return nil, Unexpectedf(err, "failed to list products")
	}

	if err := s.cache.SetJSON(ctx, key, products, s.cacheTTL); err != nil {
		s.logger.Warn("Catalog cache write failed", zap.Error(err))
	}

	return products, nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("product not found")
		}
		return nil, Unexpectedf(err, "failed to load product")
	}
	return product, nil
}

// Create adds a product to the catalog. Staff only.
func (s *CatalogService) Create(ctx context.Context, actor models.Identity, req *ProductRequest) (*models.Product, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}
	if req.Name == "" {
		return nil, Validationf("name is required")
	}
	if !req.Price.IsPositive() {
		return nil, Validationf("price must be positive")
	}

	category := req.Category
	if category == "" {
		category = "main"
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    category,
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, Unexpectedf(err, "failed to create product")
	}

	s.invalidate(ctx)
	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// Update overwrites a product's fields. Staff only.
func (s *CatalogService) Update(ctx context.Context, actor models.Identity, id int64, req *ProductRequest) (*models.Product, error) {
	if !actor.IsStaff {
		return nil, Forbiddenf("staff access required")
	}
	if req.Name == "" {
		return nil, Validationf("name is required")
	}
	if !req.Price.IsPositive() {
		return nil, Validationf("price must be positive")
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Image = req.Image
	if req.Category != "" {
		product.Category = req.Category
	}

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("product not found")
		}
		return nil, Unexpectedf(err, "failed to update product")
	}

	s.invalidate(ctx)
	return product, nil
}

// Delete removes a product. Staff only. Products referenced by order
// lines cannot be deleted; the recorded history keeps them.
func (s *CatalogService) Delete(ctx context.Context, actor models.Identity, id int64) error {
	if !actor.IsStaff {
		return Forbiddenf("staff access required")
	}

	ordered, err := s.products.ProductOrdered(ctx, id)
	if err != nil {
		return Unexpectedf(err, "failed to check product references")
	}
	if ordered {
		return Validationf("product has been ordered and cannot be deleted")
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("product not found")
		}
		return Unexpectedf(err, "failed to delete product")
	}

	s.invalidate(ctx)
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, catalogCachePrefix); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
