package order

import (
	"time"

	cartdomain "github.com/craftshop/backend/internal/domain/cart"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of supported payment methods
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

// OrderItem is a frozen copy of a cart line at materialization time.
// Mutating the cart (or the product) afterwards must not affect it.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Color      string          `gorm:"size:50" json:"color"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	ImageCover string          `gorm:"size:255" json:"image_cover"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Order is the durable record of a committed purchase
type Order struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                   `gorm:"type:uuid;index;not null" json:"user_id"`
	Items            []OrderItem                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress  valueobject.ShippingAddress `gorm:"type:jsonb" json:"shipping_address"`
	TotalPrice       decimal.Decimal             `gorm:"type:numeric(12,2);not null" json:"total_price"`
	PaymentMethod    PaymentMethod               `gorm:"size:10;not null" json:"payment_method"`
	IsPaid           bool                        `gorm:"not null;default:false" json:"is_paid"`
	PaidAt           *time.Time                  `json:"paid_at,omitempty"`
	IsDelivered      bool                        `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt      *time.Time                  `json:"delivered_at,omitempty"`
	FlaggedForReview bool                        `gorm:"not null;default:false" json:"flagged_for_review"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// NewFromCart builds an order from a cart, copying every line item so later
// cart mutations cannot reach into the order's history.
func NewFromCart(userID uuid.UUID, c *cartdomain.Cart, address valueobject.ShippingAddress, totalPrice decimal.Decimal, method PaymentMethod) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Order owner cannot be empty")
	}
	if c == nil || c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot create an order from an empty cart")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if totalPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Order total cannot be negative")
	}

	now := time.Now()
	o := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: address.Normalize(),
		TotalPrice:      totalPrice,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.Items = make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		o.Items = append(o.Items, OrderItem{
			ID:         uuid.New(),
			OrderID:    o.ID,
			ProductID:  item.ProductID,
			Color:      item.Color,
			Price:      item.Price,
			Quantity:   item.Quantity,
			ImageCover: item.ImageCover,
			CreatedAt:  now,
		})
	}
	return o, nil
}

// MarkPaid records payment. Idempotent; once paid an order never reverts.
func (o *Order) MarkPaid(at time.Time) {
	if o.IsPaid {
		return
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.UpdatedAt = time.Now()
}

// MarkDelivered records delivery. Idempotent like MarkPaid.
func (o *Order) MarkDelivered(at time.Time) {
	if o.IsDelivered {
		return
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	o.UpdatedAt = time.Now()
}

// FlagForReview marks the order for manual reconciliation, used when the
// provider-reported amount disagrees with the cart's computed total.
func (o *Order) FlagForReview() {
	o.FlaggedForReview = true
	o.UpdatedAt = time.Now()
}
