package payment

import (
	"context"
	"fmt"

	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// CheckoutSessionInput describes one hosted checkout session to create.
// The cart ID travels as the session's client reference so the webhook
// can find the cart again, and the shipping address rides along in the
// session and payment-intent metadata.
type CheckoutSessionInput struct {
	CartID          uuid.UUID
	CustomerEmail   string
	CustomerName    string
	Amount          decimal.Decimal
	ShippingAddress valueobject.ShippingAddress
	SuccessURL      string
	CancelURL       string
}

// CheckoutSessionOutput is the created session the client is redirected to
type CheckoutSessionOutput struct {
	SessionID string
	URL       string
}

const metadataShippingAddressKey = "shipping_address"

// StripeAdapter implements hosted checkout and webhook verification
// against Stripe
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCheckoutSession creates a hosted payment session for the full cart
// amount as a single line item
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSessionOutput, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("cart_id", input.CartID.String()),
		zap.String("email", input.CustomerEmail),
		zap.String("amount", input.Amount.String()))

	successURL := input.SuccessURL
	if successURL == "" {
		successURL = a.config.FrontendBaseURL + "/orders"
	}
	cancelURL := input.CancelURL
	if cancelURL == "" {
		cancelURL = a.config.FrontendBaseURL + "/cart"
	}

	metadata := map[string]string{
		metadataShippingAddressKey: input.ShippingAddress.EncodeMetadata(),
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(a.config.Currency),
					UnitAmount: stripe.Int64(MinorUnits(input.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.CustomerName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		CustomerEmail:     stripe.String(input.CustomerEmail),
		ClientReferenceID: stripe.String(input.CartID.String()),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	params.Metadata = metadata

	sess, err := session.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("cart_id", input.CartID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", shared.ErrUpstream)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("cart_id", input.CartID.String()),
		zap.String("session_id", sess.ID))

	return &CheckoutSessionOutput{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// ConstructEvent verifies the webhook signature and decodes the event.
// A bad signature is the one webhook failure that must not be acknowledged.
func (a *StripeAdapter) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, a.config.WebhookSecret)
	if err != nil {
		a.logger.Warn("Rejected webhook with invalid signature", zap.Error(err))
		return stripe.Event{}, shared.ErrUnauthorized
	}
	return event, nil
}

// ShippingAddressFromMetadata extracts the shipping address carried in
// session metadata, tolerating its absence
func ShippingAddressFromMetadata(metadata map[string]string) valueobject.ShippingAddress {
	return valueobject.ParseShippingAddress(metadata[metadataShippingAddressKey])
}

// MinorUnits converts a decimal amount to the smallest currency unit,
// rounding half away from zero
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
