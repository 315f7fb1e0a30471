package service

import (
	"context"
	"errors"

	"food-order-service/internal/models"
	"food-order-service/internal/store"
	"food-order-service/internal/util"

	"go.uber.org/zap"
)

// CartRepository is the persistence surface CartService needs.
type CartRepository interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	UpsertCartItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, userID, itemID int64) error
	ListCartItems(ctx context.Context, userID int64) ([]models.CartItem, error)
}

// CartService manages the per-user cart. Every operation is scoped to
// the authenticated user; lines owned by someone else look absent.
type CartService struct {
	repo   CartRepository
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(repo CartRepository) *CartService {
	return &CartService{
		repo:   repo,
		logger: util.GetLogger(),
	}
}

// AddCartItemRequest represents an add-to-cart payload. Quantity is a
// pointer so an absent field and an explicit zero stay distinguishable.
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity"`
}

// AddItem adds quantity of a product to the actor's cart. A line for the
// same product is incremented rather than duplicated. An absent quantity
// defaults to 1; an explicit non-positive quantity is rejected.
func (s *CartService) AddItem(ctx context.Context, actor models.Identity, req *AddCartItemRequest) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 {
		return nil, Validationf("quantity must be a positive integer")
	}

	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("product not found")
		}
		return nil, Unexpectedf(err, "failed to load product")
	}

	item, err := s.repo.UpsertCartItem(ctx, actor.UserID, req.ProductID, quantity)
	if err != nil {
		return nil, Unexpectedf(err, "failed to add cart item")
	}
	item.Product = product

	util.CartOperationsTotal.WithLabelValues("add").Inc()
	s.logger.Info("Cart item added",
		zap.Int64("user_id", actor.UserID),
		zap.Int64("product_id", req.ProductID),
		zap.Int("quantity", item.Quantity))
	return item, nil
}

// SetQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line; the returned item is nil in that case.
func (s *CartService) SetQuantity(ctx context.Context, actor models.Identity, itemID int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		if err := s.Remove(ctx, actor, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.repo.UpdateCartItemQuantity(ctx, actor.UserID, itemID, quantity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundf("cart item not found")
		}
		return nil, Unexpectedf(err, "failed to update cart item")
	}

	util.CartOperationsTotal.WithLabelValues("update").Inc()
	return item, nil
}

// Remove deletes a line from the actor's cart.
func (s *CartService) Remove(ctx context.Context, actor models.Identity, itemID int64) error {
	if err := s.repo.DeleteCartItem(ctx, actor.UserID, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundf("cart item not found")
		}
		return Unexpectedf(err, "failed to remove cart item")
	}

	util.CartOperationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// List returns the actor's cart lines with product data resolved.
func (s *CartService) List(ctx context.Context, actor models.Identity) ([]models.CartItem, error) {
	items, err := s.repo.ListCartItems(ctx, actor.UserID)
	if err != nil {
		return nil, Unexpectedf(err, "failed to list cart")
	}
	if len(items) == 0 {
		return []models.CartItem{}, nil
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, Unexpectedf(err, "failed to resolve cart products")
	}

	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}

	return items, nil
}
