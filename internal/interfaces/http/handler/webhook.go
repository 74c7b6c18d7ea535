package handler

import (
	"io"
	"net/http"

	checkoutapp "github.com/craftshop/backend/internal/application/checkout"
	"github.com/gin-gonic/gin"
)

// Webhook payloads are small; anything larger is not a legitimate event.
const maxWebhookPayloadSize = 65536

// WebhookHandler receives payment provider callbacks. These endpoints are
// called by the provider and carry their own signature-based
// authentication instead of a bearer token.
type WebhookHandler struct {
	BaseHandler
	webhookService *checkoutapp.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *checkoutapp.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// WebhookResponse represents the acknowledgement body
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HandleCheckoutWebhook verifies and processes one webhook delivery.
// The raw body is required for signature verification, so the payload is
// read before any binding.
func (h *WebhookHandler) HandleCheckoutWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, WebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	result, err := h.webhookService.Process(c.Request.Context(), payload, signature)
	if err != nil {
		// Only an unverifiable delivery reaches this branch; it must not
		// be acknowledged.
		c.JSON(http.StatusUnauthorized, WebhookResponse{
			Received: false,
			Message:  "Webhook signature verification failed",
		})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook-checkout", h.HandleCheckoutWebhook)
}
