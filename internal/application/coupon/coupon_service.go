package coupon

import (
	"context"
	"time"

	coupondomain "github.com/craftshop/backend/internal/domain/coupon"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CouponService handles discount code administration
type CouponService struct {
	couponRepo coupondomain.Repository
	logger     *zap.Logger
}

// NewCouponService creates a new CouponService
func NewCouponService(couponRepo coupondomain.Repository, logger *zap.Logger) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		logger:     logger,
	}
}

// CreateCouponInput contains input for creating a coupon
type CreateCouponInput struct {
	Name      string
	Discount  decimal.Decimal
	ExpiresAt time.Time
}

// Create creates a new coupon
func (s *CouponService) Create(ctx context.Context, input CreateCouponInput) (*coupondomain.Coupon, error) {
	c, err := coupondomain.NewCoupon(input.Name, input.Discount, input.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.couponRepo.Save(ctx, c); err != nil {
		s.logger.Error("Failed to save coupon",
			zap.String("name", input.Name),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Created coupon",
		zap.String("coupon_id", c.ID.String()),
		zap.String("name", c.Name),
		zap.Time("expires_at", c.ExpiresAt))
	return c, nil
}

// List retrieves coupons
func (s *CouponService) List(ctx context.Context, filter shared.Filter) ([]coupondomain.Coupon, error) {
	return s.couponRepo.FindAll(ctx, filter)
}

// GetByID retrieves a coupon by ID
func (s *CouponService) GetByID(ctx context.Context, id uuid.UUID) (*coupondomain.Coupon, error) {
	return s.couponRepo.FindByID(ctx, id)
}

// Delete removes a coupon
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted coupon", zap.String("coupon_id", id.String()))
	return nil
}
