package catalog

import (
	"context"

	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustStockBulk applies all adjustments as one batched operation:
	// quantity decremented and sold incremented per product using the storage
	// engine's atomic increments, never a read-modify-write. When guardStock
	// is true a row whose quantity would go negative fails the whole batch
	// with ErrInsufficientStock.
	AdjustStockBulk(ctx context.Context, adjustments []StockAdjustment, guardStock bool) error
}
