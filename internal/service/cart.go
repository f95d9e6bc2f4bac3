package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// Cart is a cart listing with its subtotal.
type Cart struct {
	Items    []model.CartItem `json:"items"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

type CartService struct {
	Cart   *repository.CartRepo
	Lookup *ProductLookup
}

func NewCartService(cart *repository.CartRepo, lookup *ProductLookup) *CartService {
	return &CartService{Cart: cart, Lookup: lookup}
}

func (s *CartService) Get(ctx context.Context, userID uint64) (Cart, error) {
	items, err := s.Cart.List(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return Cart{Items: items, Subtotal: subtotal(items)}, nil
}

// Add prices the product and merges it into the cart.
func (s *CartService) Add(ctx context.Context, userID uint64, ref LineRef) (*model.CartItem, error) {
	if ref.Quantity == 0 {
		ref.Quantity = 1
	}
	if ref.Quantity < 0 {
		return nil, invalid("quantity must be positive")
	}
	snap, err := s.Lookup.Resolve(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	item := &model.CartItem{
		UserID:        userID,
		ProductType:   ref.ProductType,
		ProductID:     ref.ProductID,
		Size:          ref.Size,
		Color:         ref.Color,
		Quantity:      ref.Quantity,
		ProductName:   snap.Name,
		ImageURL:      snap.ImageURL,
		UnitPrice:     snap.UnitPrice,
	}
	if ref.SavedDesignID != nil {
		item.SavedDesignID = *ref.SavedDesignID
	}
	if err := s.Cart.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func subtotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type FavoriteService struct {
	Favorites *repository.FavoriteRepo
	Lookup    *ProductLookup
}

func NewFavoriteService(favs *repository.FavoriteRepo, lookup *ProductLookup) *FavoriteService {
	return &FavoriteService{Favorites: favs, Lookup: lookup}
}

// Toggle flips the favorite state of a product and reports the new state.
func (s *FavoriteService) Toggle(ctx context.Context, userID uint64, productType string, productID uint64) (bool, error) {
	snap, err := s.Lookup.Describe(ctx, productType, productID)
	if err != nil {
		return false, err
	}
	return s.Favorites.Toggle(ctx, &model.Favorite{
		UserID:      userID,
		ProductType: productType,
		ProductID:   productID,
		ProductName: snap.Name,
		ImageURL:    snap.ImageURL,
		Price:       snap.UnitPrice,
	})
}
