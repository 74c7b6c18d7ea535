package catalog

import (
	"time"

	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item with tracked stock.
// Quantity and Sold always move together: every unit added to Sold
// corresponds to one unit subtracted from Quantity in the same adjustment.
type Product struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string          `gorm:"size:100;not null" json:"title"`
	Slug               string          `gorm:"size:120;index" json:"slug"`
	Description        string          `gorm:"type:text" json:"description"`
	Price              decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	PriceAfterDiscount decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_after_discount"`
	Colors             StringList      `gorm:"type:jsonb" json:"colors"`
	ImageCover         string          `gorm:"size:255" json:"image_cover"`
	Quantity           int64           `gorm:"not null;default:0" json:"quantity"`
	Sold               int64           `gorm:"not null;default:0" json:"sold"`
	RatingsAverage     decimal.Decimal `gorm:"type:numeric(3,2)" json:"ratings_average"`
	RatingsQuantity    int64           `gorm:"default:0" json:"ratings_quantity"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewProduct creates a new product
func NewProduct(title, slug, description string, price decimal.Decimal, quantity int64) (*Product, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Product quantity cannot be negative")
	}

	now := time.Now()
	return &Product{
		ID:          uuid.New(),
		Title:       title,
		Slug:        slug,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EffectivePrice returns the discounted price when present, the list price otherwise
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.PriceAfterDiscount.IsPositive() {
		return p.PriceAfterDiscount
	}
	return p.Price
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// HasStock reports whether the requested quantity is available
func (p *Product) HasStock(quantity int64) bool {
	return p.Quantity >= quantity
}

// StockAdjustment is one product's share of a batched inventory adjustment
type StockAdjustment struct {
	ProductID uuid.UUID
	Quantity  int64
}
