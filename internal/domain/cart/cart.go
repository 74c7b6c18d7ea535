package cart

import (
	"time"

	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart: a product reference with a price snapshot
// taken at add time. The snapshot, not the live product price, is what an
// order will be built from.
type CartItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CartID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"cart_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Color      string          `gorm:"size:50" json:"color"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity   int64           `gorm:"not null;default:1" json:"quantity"`
	ImageCover string          `gorm:"size:255" json:"image_cover"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Subtotal returns price × quantity for this line
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// Cart is a user's single active pre-checkout collection of items.
// TotalPrice is always Σ(item.Price × item.Quantity); it is recomputed on
// every mutation and TotalPriceAfterDiscount is cleared at the same time,
// so the two fields can never disagree.
type Cart struct {
	ID                      uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items                   []CartItem          `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice              decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"total_price"`
	TotalPriceAfterDiscount decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"total_price_after_discount"`
	CreatedAt               time.Time           `json:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at"`
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Cart owner cannot be empty")
	}
	now := time.Now()
	return &Cart{
		ID:         uuid.New(),
		UserID:     userID,
		TotalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AddItem adds a product to the cart. Adding the same product+color again
// bumps the existing line's quantity instead of creating a new line.
func (c *Cart) AddItem(productID uuid.UUID, color string, price decimal.Decimal, imageCover string) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
	}

	for idx := range c.Items {
		if c.Items[idx].ProductID == productID && c.Items[idx].Color == color {
			c.Items[idx].Quantity++
			c.Items[idx].UpdatedAt = time.Now()
			c.recalculate()
			return nil
		}
	}

	now := time.Now()
	c.Items = append(c.Items, CartItem{
		ID:         uuid.New(),
		CartID:     c.ID,
		ProductID:  productID,
		Color:      color,
		Price:      price,
		Quantity:   1,
		ImageCover: imageCover,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	c.recalculate()
	return nil
}

// RemoveItem removes a line item by its ID
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.recalculate()
			return nil
		}
	}
	return shared.ErrNotFound
}

// UpdateItemQuantity sets a line item's quantity
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for idx := range c.Items {
		if c.Items[idx].ID == itemID {
			c.Items[idx].Quantity = quantity
			c.Items[idx].UpdatedAt = time.Now()
			c.recalculate()
			return nil
		}
	}
	return shared.ErrNotFound
}

// ApplyDiscount stores the payable total after a percentage discount,
// rounded to two decimal places. The raw total is left intact for audit.
func (c *Cart) ApplyDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100 percent")
	}
	discounted := c.TotalPrice.
		Sub(c.TotalPrice.Mul(percent).Div(decimal.NewFromInt(100))).
		Round(2)
	c.TotalPriceAfterDiscount = decimal.NewNullDecimal(discounted)
	c.UpdatedAt = time.Now()
	return nil
}

// EffectiveTotal is the payable amount: the discounted total when a coupon
// has been applied, the raw total otherwise.
func (c *Cart) EffectiveTotal() decimal.Decimal {
	if c.TotalPriceAfterDiscount.Valid {
		return c.TotalPriceAfterDiscount.Decimal
	}
	return c.TotalPrice
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// recalculate restores the total-price invariant after any mutation.
// Any applied discount is invalidated because the base total changed.
func (c *Cart) recalculate() {
	total := decimal.Zero
	for idx := range c.Items {
		total = total.Add(c.Items[idx].Subtotal())
	}
	c.TotalPrice = total
	c.TotalPriceAfterDiscount = decimal.NullDecimal{}
	c.UpdatedAt = time.Now()
}
