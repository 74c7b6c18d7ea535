package catalog

import (
	"context"

	"github.com/craftshop/backend/internal/domain/catalog"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product catalog use cases
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductInput contains input for creating a product
type CreateProductInput struct {
	Title              string
	Slug               string
	Description        string
	Price              decimal.Decimal
	PriceAfterDiscount decimal.Decimal
	Colors             []string
	ImageCover         string
	Quantity           int64
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*catalog.Product, error) {
	product, err := catalog.NewProduct(input.Title, input.Slug, input.Description, input.Price, input.Quantity)
	if err != nil {
		return nil, err
	}
	product.PriceAfterDiscount = input.PriceAfterDiscount
	product.Colors = catalog.StringList(input.Colors)
	product.ImageCover = input.ImageCover

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product",
			zap.String("title", input.Title),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Created product",
		zap.String("product_id", product.ID.String()),
		zap.String("title", product.Title))
	return product, nil
}

// UpdateProductInput contains input for updating a product.
// Nil fields are left untouched.
type UpdateProductInput struct {
	Title              *string
	Description        *string
	Price              *decimal.Decimal
	PriceAfterDiscount *decimal.Decimal
	Colors             []string
	ImageCover         *string
	Quantity           *int64
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.PriceAfterDiscount != nil {
		product.PriceAfterDiscount = *input.PriceAfterDiscount
	}
	if input.Colors != nil {
		product.Colors = catalog.StringList(input.Colors)
	}
	if input.ImageCover != nil {
		product.ImageCover = *input.ImageCover
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Product quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to update product",
			zap.String("product_id", id.String()),
			zap.Error(err))
		return nil, err
	}

	return product, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// GetBySlug retrieves a product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

// ListResult is a page of products with the total count
type ListResult struct {
	Products []catalog.Product
	Total    int64
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (*ListResult, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Products: products, Total: total}, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted product", zap.String("product_id", id.String()))
	return nil
}
