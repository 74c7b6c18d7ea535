package handler

import (
	orderapp "github.com/craftshop/backend/internal/application/order"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/craftshop/backend/internal/interfaces/http/dto"
	"github.com/craftshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService   *orderapp.OrderService
	authMiddleware gin.HandlerFunc
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService, authMiddleware gin.HandlerFunc) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		authMiddleware: authMiddleware,
	}
}

// ShippingAddressRequest is the address payload on order creation
type ShippingAddressRequest struct {
	Alias      string `json:"alias" binding:"max=50"`
	Details    string `json:"details" binding:"max=255"`
	Phone      string `json:"phone" binding:"max=30"`
	City       string `json:"city" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
}

func (r ShippingAddressRequest) toValueObject() valueobject.ShippingAddress {
	return valueobject.ShippingAddress{
		Alias:      r.Alias,
		Details:    r.Details,
		Phone:      r.Phone,
		City:       r.City,
		PostalCode: r.PostalCode,
	}
}

// CreateCashOrderRequest represents a cash-on-delivery order request
type CreateCashOrderRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
}

// CreateCashOrder materializes a cash order from the caller's cart
func (h *OrderHandler) CreateCashOrder(c *gin.Context) {
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

	// The body is optional; an empty request orders to a blank address.
	var req CreateCashOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	order, err := h.orderService.CreateCashOrder(c.Request.Context(), userID, cartID, req.ShippingAddress.toValueObject())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List returns the caller's orders; admins see every order with pagination
// metadata
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()

	if middleware.IsAdmin(c) {
		result, err := h.orderService.ListAllOrders(c.Request.Context(), filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, result.Orders, result.Total, filter.Page, filter.PageSize)
		return
	}

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get returns one order, restricted to its owner unless admin
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateToPaid marks an order paid (admin)
func (h *OrderHandler) UpdateToPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.UpdateToPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateToDelivered marks an order delivered (admin)
func (h *OrderHandler) UpdateToDelivered(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.UpdateToDelivered(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete removes an order (admin)
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders", h.authMiddleware)
	{
		orders.GET("", h.List)
		orders.GET(":id", h.Get)
		orders.POST(":cartId", h.CreateCashOrder)
	}
	admin := orders.Group("", middleware.RequireAdmin())
	{
		admin.PUT(":id/pay", h.UpdateToPaid)
		admin.PUT(":id/deliver", h.UpdateToDelivered)
		admin.DELETE(":id", h.Delete)
	}
}
