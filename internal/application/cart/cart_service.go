package cart

import (
	"context"
	"errors"
	"time"

	cartdomain "github.com/craftshop/backend/internal/domain/cart"
	"github.com/craftshop/backend/internal/domain/catalog"
	coupondomain "github.com/craftshop/backend/internal/domain/coupon"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService handles the pre-checkout cart lifecycle. Every mutation goes
// through the cart aggregate so the total-price invariant holds after each
// call.
type CartService struct {
	cartRepo    cartdomain.Repository
	productRepo catalog.ProductRepository
	couponRepo  coupondomain.Repository
	logger      *zap.Logger
}

// CartServiceConfig contains dependencies for CartService
type CartServiceConfig struct {
	CartRepo    cartdomain.Repository
	ProductRepo catalog.ProductRepository
	CouponRepo  coupondomain.Repository
	Logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cfg CartServiceConfig) *CartService {
	return &CartService{
		cartRepo:    cfg.CartRepo,
		productRepo: cfg.ProductRepo,
		couponRepo:  cfg.CouponRepo,
		logger:      cfg.Logger,
	}
}

// AddItem adds a product to the user's cart, creating the cart on first
// use. The product's current effective price is snapshotted onto the line.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, color string) (*cartdomain.Cart, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		c, err = cartdomain.NewCart(userID)
		if err != nil {
			return nil, err
		}
	}

	if err := c.AddItem(product.ID, color, product.EffectivePrice(), product.ImageCover); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save cart",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, err
	}

	return c, nil
}

// Get retrieves the user's cart
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*cartdomain.Cart, error) {
	return s.cartRepo.FindByUser(ctx, userID)
}

// RemoveItem removes one line from the user's cart
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartdomain.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateItemQuantity sets the quantity on one cart line
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int64) (*cartdomain.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.UpdateItemQuantity(itemID, quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear deletes the user's cart entirely
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.DeleteByUser(ctx, userID)
}

// ApplyCoupon applies a named discount code to the user's cart. Unknown
// and expired codes get the same generic rejection.
func (s *CartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, couponName string) (*cartdomain.Cart, error) {
	coupon, err := s.couponRepo.FindValidByName(ctx, couponName, time.Now())
	if err != nil {
		return nil, err
	}

	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.ApplyDiscount(coupon.Discount); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Applied coupon to cart",
		zap.String("user_id", userID.String()),
		zap.String("coupon", coupon.Name),
		zap.String("discounted_total", c.EffectiveTotal().String()))
	return c, nil
}
