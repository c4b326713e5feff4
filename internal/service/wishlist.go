package service

import (
	"context"
	"fmt"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"
)

type WishlistService interface {
	Add(ctx context.Context, userID, productID string) (*model.WishlistItem, error)
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]model.WishlistItem, error)
}

type wishlistServiceImpl struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistServiceImpl{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistServiceImpl) Add(ctx context.Context, userID, productID string) (*model.WishlistItem, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if isNotFound(err) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("check wishlist: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("Product already in wishlist")
	}

	item := &model.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}
	item.Product = product
	return item, nil
}

func (s *wishlistServiceImpl) Remove(ctx context.Context, userID, productID string) error {
	if err := parseID(productID); err != nil {
		return err
	}

	err := s.wishlistRepo.Remove(ctx, userID, productID)
	if isNotFound(err) {
		return apperr.NotFound("Product not in wishlist")
	}
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

func (s *wishlistServiceImpl) List(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	items, err := s.wishlistRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	if items == nil {
		items = []model.WishlistItem{}
	}
	return items, nil
}
