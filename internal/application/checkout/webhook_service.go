package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	orderapp "github.com/craftshop/backend/internal/application/order"
	"github.com/craftshop/backend/internal/domain/identity"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/infrastructure/payment"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// WebhookService turns provider payment confirmations into orders.
//
// The acknowledgement policy is asymmetric on purpose: a bad signature is
// never acknowledged, but once the event is authentic it is always
// acknowledged, even when materialization fails. The provider retries
// unacknowledged events, and a retry cannot fix a local bug; it can only
// pile up duplicate deliveries. Failed materializations are logged for
// manual reconciliation instead.
type WebhookService struct {
	gateway      PaymentGateway
	orderService *orderapp.OrderService
	userRepo     identity.UserRepository
	idempotency  shared.IdempotencyStore
	eventTTL     time.Duration
	logger       *zap.Logger
}

// WebhookServiceConfig contains dependencies for WebhookService
type WebhookServiceConfig struct {
	Gateway      PaymentGateway
	OrderService *orderapp.OrderService
	UserRepo     identity.UserRepository
	Idempotency  shared.IdempotencyStore
	EventTTL     time.Duration
	Logger       *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		gateway:      cfg.Gateway,
		orderService: cfg.OrderService,
		userRepo:     cfg.UserRepo,
		idempotency:  cfg.Idempotency,
		eventTTL:     cfg.EventTTL,
		logger:       cfg.Logger,
	}
}

// WebhookResult contains the result of processing a webhook delivery
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// Process verifies and handles one webhook delivery. A returned error
// means the delivery must NOT be acknowledged; every other outcome is an
// acknowledgement.
func (s *WebhookService) Process(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return nil, err
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	processed, err := s.idempotency.IsProcessed(ctx, event.ID)
	if err != nil {
		// Dedup store down: fall through and process. The cart-deletion
		// check below still makes a duplicate delivery harmless.
		s.logger.Error("Idempotency store unavailable, processing without dedup",
			zap.String("event_id", event.ID),
			zap.Error(err))
	} else if processed {
		s.logger.Info("Skipping already-processed webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		result.Message = "Event already processed"
		return result, nil
	}

	switch event.Type {
	case "checkout.session.completed":
		s.handleSessionCompleted(ctx, event, result)
	case "payment_intent.payment_failed":
		s.handlePaymentFailed(event, result)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	// Only successfully handled events are tombstoned. A transient failure
	// stays unmarked, so a manually resent delivery gets another attempt.
	if result.Processed {
		if _, err := s.idempotency.MarkProcessed(ctx, event.ID, s.eventTTL); err != nil {
			s.logger.Error("Failed to record processed webhook event",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}

	return result, nil
}

// handleSessionCompleted materializes an order from a completed checkout
// session. Every failure is absorbed into the result: the event is
// authentic and will be acknowledged regardless.
func (s *WebhookService) handleSessionCompleted(ctx context.Context, event stripe.Event, result *WebhookResult) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logger.Error("Failed to unmarshal checkout session",
			zap.String("event_id", event.ID),
			zap.Error(err))
		result.Message = "Malformed session payload"
		return
	}

	cartID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		s.logger.Error("Checkout session carries no usable cart reference",
			zap.String("event_id", event.ID),
			zap.String("client_reference_id", session.ClientReferenceID))
		result.Message = "Invalid cart reference"
		return
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("No user matches the session's customer email",
			zap.String("event_id", event.ID),
			zap.String("email", email),
			zap.Error(err))
		result.Message = "Unknown customer"
		return
	}

	o, err := s.orderService.MaterializeFromPayment(ctx, orderapp.MaterializePaymentInput{
		CartID:          cartID,
		UserID:          user.ID,
		Address:         payment.ShippingAddressFromMetadata(session.Metadata),
		PaidAmountMinor: session.AmountTotal,
		PaidAt:          time.Unix(event.Created, 0),
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Cart already consumed: this payment was materialized by an
			// earlier delivery.
			s.logger.Info("Cart already materialized, ignoring redelivery",
				zap.String("event_id", event.ID),
				zap.String("cart_id", cartID.String()))
			result.Message = "Cart already materialized"
			return
		}
		s.logger.Error("Failed to materialize order from payment",
			zap.String("event_id", event.ID),
			zap.String("cart_id", cartID.String()),
			zap.Error(err))
		result.Message = "Materialization failed"
		return
	}

	result.Processed = true
	result.Message = fmt.Sprintf("Order %s created", o.ID)
}

// handlePaymentFailed records the failure. No local state changes: the
// cart stays intact so the customer can retry.
func (s *WebhookService) handlePaymentFailed(event stripe.Event, result *WebhookResult) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.logger.Error("Failed to unmarshal payment intent",
			zap.String("event_id", event.ID),
			zap.Error(err))
		result.Message = "Malformed payment intent payload"
		return
	}

	s.logger.Warn("Payment failed",
		zap.String("event_id", event.ID),
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", intent.Amount))
	result.Processed = true
	result.Message = "Payment failure recorded"
}
