package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	coupondomain "github.com/craftshop/backend/internal/domain/coupon"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCouponRepository implements coupon.Repository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByID finds a coupon by ID
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindValidByName finds a coupon by name whose expiry is after now.
// Unknown and expired codes are both reported as ErrInvalidOrExpired.
func (r *GormCouponRepository) FindValidByName(ctx context.Context, name string, now time.Time) (*coupondomain.Coupon, error) {
	var c coupondomain.Coupon
	err := r.db.WithContext(ctx).
		Where("name = ? AND expires_at > ?", name, now).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, coupondomain.ErrInvalidOrExpired
		}
		return nil, err
	}
	return &c, nil
}

// FindAll finds all coupons
func (r *GormCouponRepository) FindAll(ctx context.Context, filter shared.Filter) ([]coupondomain.Coupon, error) {
	var coupons []coupondomain.Coupon
	query := r.db.WithContext(ctx).Model(&coupondomain.Coupon{})

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("expires_at ASC")
	}

	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Save creates or updates a coupon
func (r *GormCouponRepository) Save(ctx context.Context, c *coupondomain.Coupon) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete deletes a coupon
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&coupondomain.Coupon{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCouponRepository implements coupon.Repository
var _ coupondomain.Repository = (*GormCouponRepository)(nil)
