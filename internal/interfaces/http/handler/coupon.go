package handler

import (
	"time"

	couponapp "github.com/craftshop/backend/internal/application/coupon"
	"github.com/craftshop/backend/internal/interfaces/http/dto"
	"github.com/craftshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponHandler handles coupon administration endpoints (admin only)
type CouponHandler struct {
	BaseHandler
	couponService  *couponapp.CouponService
	authMiddleware gin.HandlerFunc
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *couponapp.CouponService, authMiddleware gin.HandlerFunc) *CouponHandler {
	return &CouponHandler{
		couponService:  couponService,
		authMiddleware: authMiddleware,
	}
}

// CreateCouponRequest represents a request to create a coupon
type CreateCouponRequest struct {
	Name      string    `json:"name" binding:"required,min=1,max=50"`
	Discount  float64   `json:"discount" binding:"required,gt=0,lte=100"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// Create creates a coupon
func (h *CouponHandler) Create(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	coupon, err := h.couponService.Create(c.Request.Context(), couponapp.CreateCouponInput{
		Name:      req.Name,
		Discount:  decimal.NewFromFloat(req.Discount),
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, coupon)
}

// List returns all coupons
func (h *CouponHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	coupons, err := h.couponService.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupons)
}

// Get returns one coupon by ID
func (h *CouponHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	coupon, err := h.couponService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// Delete removes a coupon
func (h *CouponHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid coupon ID")
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers coupon routes
func (h *CouponHandler) RegisterRoutes(rg *gin.RouterGroup) {
	coupons := rg.Group("/coupons", h.authMiddleware, middleware.RequireAdmin())
	{
		coupons.GET("", h.List)
		coupons.GET(":id", h.Get)
		coupons.POST("", h.Create)
		coupons.DELETE(":id", h.Delete)
	}
}
