package handler

import (
	checkoutapp "github.com/craftshop/backend/internal/application/checkout"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutHandler starts hosted payment sessions for carts
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
	authMiddleware  gin.HandlerFunc
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService, authMiddleware gin.HandlerFunc) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		authMiddleware:  authMiddleware,
	}
}

// CreateSessionRequest represents a request to start a checkout session
type CreateSessionRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
	SuccessURL      string                 `json:"success_url" binding:"omitempty,url"`
	CancelURL       string                 `json:"cancel_url" binding:"omitempty,url"`
}

// CreateSession starts a hosted payment session for the caller's cart
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	cartID, err := uuid.Parse(c.Param("cartId"))
	if err != nil {
		h.BadRequest(c, "Invalid cart ID")
		return
	}

	// The body is optional; address and redirect URLs all have defaults.
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	session, err := h.checkoutService.CreateSession(c.Request.Context(), checkoutapp.CreateSessionInput{
		UserID:          userID,
		CartID:          cartID,
		ShippingAddress: req.ShippingAddress.toValueObject(),
		SuccessURL:      req.SuccessURL,
		CancelURL:       req.CancelURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checkout := rg.Group("/checkout-session", h.authMiddleware)
	{
		checkout.POST(":cartId", h.CreateSession)
	}
}
