package handler

import (
	identityapp "github.com/craftshop/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles the authenticated user's profile, wishlist and
// address book
type UserHandler struct {
	BaseHandler
	userService    *identityapp.UserService
	authMiddleware gin.HandlerFunc
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService, authMiddleware gin.HandlerFunc) *UserHandler {
	return &UserHandler{
		userService:    userService,
		authMiddleware: authMiddleware,
	}
}

// WishlistRequest represents a request to save a product for later
type WishlistRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// AddAddressRequest represents a request to save an address
type AddAddressRequest struct {
	ShippingAddressRequest
}

// GetProfile returns the caller's profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// AddToWishlist saves a product to the caller's wishlist
func (h *UserHandler) AddToWishlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.userService.AddToWishlist(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveFromWishlist removes a product from the caller's wishlist
func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.userService.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListWishlist returns the caller's wishlist
func (h *UserHandler) ListWishlist(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entries, err := h.userService.ListWishlist(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// AddAddress saves an address to the caller's address book
func (h *UserHandler) AddAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req AddAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	address, err := h.userService.AddAddress(c.Request.Context(), userID, req.toValueObject())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// RemoveAddress removes an address from the caller's address book
func (h *UserHandler) RemoveAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	addressID, err := uuid.Parse(c.Param("addressId"))
	if err != nil {
		h.BadRequest(c, "Invalid address ID")
		return
	}

	if err := h.userService.RemoveAddress(c.Request.Context(), userID, addressID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListAddresses returns the caller's saved addresses
func (h *UserHandler) ListAddresses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	addresses, err := h.userService.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users/me", h.authMiddleware)
	{
		users.GET("", h.GetProfile)
		users.GET("wishlist", h.ListWishlist)
		users.POST("wishlist", h.AddToWishlist)
		users.DELETE("wishlist/:productId", h.RemoveFromWishlist)
		users.GET("addresses", h.ListAddresses)
		users.POST("addresses", h.AddAddress)
		users.DELETE("addresses/:addressId", h.RemoveAddress)
	}
}
