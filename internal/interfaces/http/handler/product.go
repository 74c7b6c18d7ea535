package handler

import (
	catalogapp "github.com/craftshop/backend/internal/application/catalog"
	"github.com/craftshop/backend/internal/interfaces/http/dto"
	"github.com/craftshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product catalog endpoints. Browsing is public;
// mutations require an admin.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	authMiddleware gin.HandlerFunc
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, authMiddleware gin.HandlerFunc) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		authMiddleware: authMiddleware,
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Title              string   `json:"title" binding:"required,min=1,max=100"`
	Slug               string   `json:"slug" binding:"max=120"`
	Description        string   `json:"description" binding:"max=5000"`
	Price              float64  `json:"price" binding:"required,gt=0"`
	PriceAfterDiscount *float64 `json:"price_after_discount" binding:"omitempty,gt=0"`
	Colors             []string `json:"colors"`
	ImageCover         string   `json:"image_cover" binding:"max=255"`
	Quantity           int64    `json:"quantity" binding:"min=0"`
}

// UpdateProductRequest represents a partial update to a product
type UpdateProductRequest struct {
	Title              *string  `json:"title" binding:"omitempty,min=1,max=100"`
	Description        *string  `json:"description" binding:"omitempty,max=5000"`
	Price              *float64 `json:"price" binding:"omitempty,gt=0"`
	PriceAfterDiscount *float64 `json:"price_after_discount" binding:"omitempty,gte=0"`
	Colors             []string `json:"colors"`
	ImageCover         *string  `json:"image_cover" binding:"omitempty,max=255"`
	Quantity           *int64   `json:"quantity" binding:"omitempty,min=0"`
}

// List returns a page of products
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.productService.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filter := req.ToFilter()
	h.SuccessWithMeta(c, result.Products, result.Total, filter.Page, filter.PageSize)
}

// Get returns one product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetBySlug returns one product by slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create creates a product (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.CreateProductInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Colors:      req.Colors,
		ImageCover:  req.ImageCover,
		Quantity:    req.Quantity,
	}
	if req.PriceAfterDiscount != nil {
		input.PriceAfterDiscount = decimal.NewFromFloat(*req.PriceAfterDiscount)
	}

	product, err := h.productService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update applies a partial update to a product (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Colors:      req.Colors,
		ImageCover:  req.ImageCover,
		Quantity:    req.Quantity,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		input.Price = &price
	}
	if req.PriceAfterDiscount != nil {
		discounted := decimal.NewFromFloat(*req.PriceAfterDiscount)
		input.PriceAfterDiscount = &discounted
	}

	product, err := h.productService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET(":id", h.Get)
		products.GET("slug/:slug", h.GetBySlug)
	}
	admin := rg.Group("/products", h.authMiddleware, middleware.RequireAdmin())
	{
		admin.POST("", h.Create)
		admin.PUT(":id", h.Update)
		admin.DELETE(":id", h.Delete)
	}
}
