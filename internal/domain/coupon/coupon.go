package coupon

import (
	"context"
	"time"

	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidOrExpired is the single error for both an unknown and an expired
// coupon code. The two cases are deliberately indistinguishable so valid but
// expired codes cannot be enumerated.
var ErrInvalidOrExpired = shared.NewDomainError("COUPON_INVALID", "Coupon is invalid or expired")

// Coupon is a percentage discount code with an expiry
type Coupon struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Discount  decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount"`
	ExpiresAt time.Time       `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCoupon creates a new coupon
func NewCoupon(name string, discount decimal.Decimal, expiresAt time.Time) (*Coupon, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Coupon name cannot be empty")
	}
	if discount.LessThanOrEqual(decimal.Zero) || discount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Coupon discount must be between 0 and 100 percent")
	}
	if expiresAt.Before(time.Now()) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Coupon expiry must be in the future")
	}

	now := time.Now()
	return &Coupon{
		ID:        uuid.New(),
		Name:      name,
		Discount:  discount,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsExpired reports whether the coupon has expired at the given instant
func (c *Coupon) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Repository defines persistence operations for coupons
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	// FindValidByName returns the coupon matching the name with an expiry
	// after now. Both unknown and expired codes yield ErrInvalidOrExpired.
	FindValidByName(ctx context.Context, name string, now time.Time) (*Coupon, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Coupon, error)
	Save(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}
