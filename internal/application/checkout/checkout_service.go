package checkout

import (
	"context"

	cartdomain "github.com/craftshop/backend/internal/domain/cart"
	"github.com/craftshop/backend/internal/domain/identity"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/craftshop/backend/internal/infrastructure/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// Tax and shipping are named components of the payable amount. Both are
// currently zero; when they become real they join the total here and in
// the webhook's amount verification, nowhere else.
var (
	taxPrice      = decimal.Zero
	shippingPrice = decimal.Zero
)

// PaymentGateway is the slice of the payment provider the checkout flow
// needs: session creation and webhook event verification
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input payment.CheckoutSessionInput) (*payment.CheckoutSessionOutput, error)
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

// CheckoutService starts hosted payment sessions. It writes nothing
// locally: the cart is only consumed when the provider confirms payment.
type CheckoutService struct {
	cartRepo cartdomain.Repository
	userRepo identity.UserRepository
	gateway  PaymentGateway
	logger   *zap.Logger
}

// CheckoutServiceConfig contains dependencies for CheckoutService
type CheckoutServiceConfig struct {
	CartRepo cartdomain.Repository
	UserRepo identity.UserRepository
	Gateway  PaymentGateway
	Logger   *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	return &CheckoutService{
		cartRepo: cfg.CartRepo,
		userRepo: cfg.UserRepo,
		gateway:  cfg.Gateway,
		logger:   cfg.Logger,
	}
}

// CreateSessionInput contains input for starting a checkout session
type CreateSessionInput struct {
	UserID          uuid.UUID
	CartID          uuid.UUID
	ShippingAddress valueobject.ShippingAddress
	SuccessURL      string
	CancelURL       string
}

// CreateSession starts a hosted payment session for the cart's effective
// total plus tax and shipping
func (s *CheckoutService) CreateSession(ctx context.Context, input CreateSessionInput) (*payment.CheckoutSessionOutput, error) {
	c, err := s.cartRepo.FindByID(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	if c.UserID != input.UserID {
		return nil, shared.ErrForbidden
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot check out an empty cart")
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	total := c.EffectiveTotal().Add(taxPrice).Add(shippingPrice)

	out, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutSessionInput{
		CartID:          c.ID,
		CustomerEmail:   user.Email,
		CustomerName:    user.Name,
		Amount:          total,
		ShippingAddress: input.ShippingAddress.Normalize(),
		SuccessURL:      input.SuccessURL,
		CancelURL:       input.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Started checkout session",
		zap.String("cart_id", c.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("session_id", out.SessionID),
		zap.String("amount", total.String()))
	return out, nil
}
