package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	orderapp "github.com/craftshop/backend/internal/application/order"
	cartdomain "github.com/craftshop/backend/internal/domain/cart"
	"github.com/craftshop/backend/internal/domain/identity"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

type webhookTestMocks struct {
	gateway     *MockPaymentGateway
	userRepo    *MockUserRepository
	idempotency *MockIdempotencyStore
	cartRepo    *MockCartRepository
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
}

func createTestWebhookService(t *testing.T) (*WebhookService, *webhookTestMocks) {
	mocks := &webhookTestMocks{
		gateway:     new(MockPaymentGateway),
		userRepo:    new(MockUserRepository),
		idempotency: new(MockIdempotencyStore),
		cartRepo:    new(MockCartRepository),
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
	}
	logger, _ := zap.NewDevelopment()
	orderService := orderapp.NewOrderService(orderapp.OrderServiceConfig{
		OrderRepo:   mocks.orderRepo,
		CartRepo:    mocks.cartRepo,
		ProductRepo: mocks.productRepo,
		Logger:      logger,
	})
	service := NewWebhookService(WebhookServiceConfig{
		Gateway:      mocks.gateway,
		OrderService: orderService,
		UserRepo:     mocks.userRepo,
		Idempotency:  mocks.idempotency,
		EventTTL:     72 * time.Hour,
		Logger:       logger,
	})
	return service, mocks
}

func createSessionCompletedEvent(t *testing.T, cartID uuid.UUID, email string, amountTotal int64, address valueobject.ShippingAddress) stripe.Event {
	session := map[string]interface{}{
		"id":                  "cs_test_123",
		"client_reference_id": cartID.String(),
		"customer_email":      email,
		"amount_total":        amountTotal,
		"metadata": map[string]string{
			"shipping_address": address.EncodeMetadata(),
		},
	}
	raw, err := json.Marshal(session)
	require.NoError(t, err)

	return stripe.Event{
		ID:      "evt_" + uuid.NewString(),
		Type:    "checkout.session.completed",
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func TestWebhookService_Process_InvalidSignature(t *testing.T) {
	service, mocks := createTestWebhookService(t)
	payload := []byte(`{"type":"checkout.session.completed"}`)

	mocks.gateway.On("ConstructEvent", payload, "bad_sig").
		Return(stripe.Event{}, shared.ErrUnauthorized)

	result, err := service.Process(context.Background(), payload, "bad_sig")

	assert.Error(t, err)
	assert.Nil(t, result)
	mocks.idempotency.AssertNotCalled(t, "IsProcessed", mock.Anything, mock.Anything)
	mocks.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookService_Process_SessionCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("materializes the order", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		userID := uuid.New()
		c, err := cartdomain.NewCart(userID)
		require.NoError(t, err)
		require.NoError(t, c.AddItem(uuid.New(), "red", decimal.NewFromInt(50), ""))

		addr := valueobject.ShippingAddress{Details: "12 Pottery Lane", City: "Cairo"}
		event := createSessionCompletedEvent(t, c.ID, "buyer@example.com", 5000, addr)
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)
		mocks.idempotency.On("MarkProcessed", ctx, event.ID, 72*time.Hour).Return(true, nil)
		mocks.userRepo.On("FindByEmail", ctx, "buyer@example.com").
			Return(&identity.User{ID: userID, Email: "buyer@example.com"}, nil)
		mocks.cartRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		mocks.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		mocks.productRepo.On("AdjustStockBulk", ctx, mock.Anything, false).Return(nil)
		mocks.cartRepo.On("Delete", ctx, c.ID).Return(nil)

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Processed)
		assert.Equal(t, event.ID, result.EventID)
		assert.Equal(t, "checkout.session.completed", result.EventType)
		mocks.cartRepo.AssertExpectations(t)
		mocks.idempotency.AssertExpectations(t)
	})

	t.Run("skips an already-processed event", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		event := createSessionCompletedEvent(t, uuid.New(), "buyer@example.com", 5000, valueobject.ShippingAddress{})
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(true, nil)

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "Event already processed", result.Message)
		mocks.cartRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		mocks.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted cart makes a redelivery a no-op that is still acknowledged", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		cartID := uuid.New()
		userID := uuid.New()
		event := createSessionCompletedEvent(t, cartID, "buyer@example.com", 5000, valueobject.ShippingAddress{})
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)
		mocks.userRepo.On("FindByEmail", ctx, "buyer@example.com").
			Return(&identity.User{ID: userID}, nil)
		mocks.cartRepo.On("FindByID", ctx, cartID).Return(nil, shared.ErrNotFound)

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "Cart already materialized", result.Message)
		mocks.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("materialization failure is absorbed and acknowledged", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		userID := uuid.New()
		c, err := cartdomain.NewCart(userID)
		require.NoError(t, err)
		require.NoError(t, c.AddItem(uuid.New(), "red", decimal.NewFromInt(10), ""))
		event := createSessionCompletedEvent(t, c.ID, "buyer@example.com", 1000, valueobject.ShippingAddress{})
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)
		mocks.userRepo.On("FindByEmail", ctx, "buyer@example.com").
			Return(&identity.User{ID: userID}, nil)
		mocks.cartRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		mocks.orderRepo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "Materialization failed", result.Message)
		// the event stays unmarked so a resend gets another attempt
		mocks.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a resent delivery recovers from a transient materialization failure", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		userID := uuid.New()
		c, err := cartdomain.NewCart(userID)
		require.NoError(t, err)
		require.NoError(t, c.AddItem(uuid.New(), "red", decimal.NewFromInt(10), ""))
		event := createSessionCompletedEvent(t, c.ID, "buyer@example.com", 1000, valueobject.ShippingAddress{})
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)
		mocks.idempotency.On("MarkProcessed", ctx, event.ID, 72*time.Hour).Return(true, nil)
		mocks.userRepo.On("FindByEmail", ctx, "buyer@example.com").
			Return(&identity.User{ID: userID}, nil)
		mocks.cartRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		mocks.orderRepo.On("Save", ctx, mock.Anything).Return(errors.New("db down")).Once()
		mocks.orderRepo.On("Save", ctx, mock.Anything).Return(nil)
		mocks.productRepo.On("AdjustStockBulk", ctx, mock.Anything, false).Return(nil)
		mocks.cartRepo.On("Delete", ctx, c.ID).Return(nil)

		first, err := service.Process(ctx, payload, "sig")
		require.NoError(t, err)
		assert.False(t, first.Processed)
		assert.Equal(t, "Materialization failed", first.Message)

		second, err := service.Process(ctx, payload, "sig")
		require.NoError(t, err)
		assert.True(t, second.Processed)
		mocks.cartRepo.AssertCalled(t, "Delete", ctx, c.ID)
	})

	t.Run("unknown customer email is absorbed and acknowledged", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		event := createSessionCompletedEvent(t, uuid.New(), "ghost@example.com", 1000, valueobject.ShippingAddress{})
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)
		mocks.userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "Unknown customer", result.Message)
	})

	t.Run("missing cart reference is absorbed and acknowledged", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		raw, err := json.Marshal(map[string]interface{}{"id": "cs_test", "client_reference_id": ""})
		require.NoError(t, err)
		event := stripe.Event{
			ID:      "evt_no_ref",
			Type:    "checkout.session.completed",
			Created: time.Now().Unix(),
			Data:    &stripe.EventData{Raw: raw},
		}
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "Invalid cart reference", result.Message)
	})

	t.Run("idempotency store outage falls back to processing", func(t *testing.T) {
		service, mocks := createTestWebhookService(t)
		userID := uuid.New()
		c, err := cartdomain.NewCart(userID)
		require.NoError(t, err)
		require.NoError(t, c.AddItem(uuid.New(), "red", decimal.NewFromInt(10), ""))
		event := createSessionCompletedEvent(t, c.ID, "buyer@example.com", 1000, valueobject.ShippingAddress{})
		payload := []byte("payload")

		mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
		mocks.idempotency.On("IsProcessed", ctx, event.ID).
			Return(false, errors.New("redis down"))
		mocks.idempotency.On("MarkProcessed", ctx, event.ID, 72*time.Hour).
			Return(false, errors.New("redis down"))
		mocks.userRepo.On("FindByEmail", ctx, "buyer@example.com").
			Return(&identity.User{ID: userID}, nil)
		mocks.cartRepo.On("FindByID", ctx, c.ID).Return(c, nil)
		mocks.orderRepo.On("Save", ctx, mock.Anything).Return(nil)
		mocks.productRepo.On("AdjustStockBulk", ctx, mock.Anything, false).Return(nil)
		mocks.cartRepo.On("Delete", ctx, c.ID).Return(nil)

		result, err := service.Process(ctx, payload, "sig")

		require.NoError(t, err)
		assert.True(t, result.Processed)
	})
}

func TestWebhookService_Process_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	service, mocks := createTestWebhookService(t)

	raw, err := json.Marshal(map[string]interface{}{"id": "pi_test_1", "amount": 5000})
	require.NoError(t, err)
	event := stripe.Event{
		ID:      "evt_failed",
		Type:    "payment_intent.payment_failed",
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
	payload := []byte("payload")

	mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
	mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)
	mocks.idempotency.On("MarkProcessed", ctx, event.ID, 72*time.Hour).Return(true, nil)

	result, err := service.Process(ctx, payload, "sig")

	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "Payment failure recorded", result.Message)
	// the payment failure must not touch any local state
	mocks.cartRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mocks.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWebhookService_Process_UnhandledEventType(t *testing.T) {
	ctx := context.Background()
	service, mocks := createTestWebhookService(t)

	event := stripe.Event{
		ID:      "evt_other",
		Type:    "customer.created",
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: []byte(`{}`)},
	}
	payload := []byte("payload")

	mocks.gateway.On("ConstructEvent", payload, "sig").Return(event, nil)
	mocks.idempotency.On("IsProcessed", ctx, event.ID).Return(false, nil)

	result, err := service.Process(ctx, payload, "sig")

	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Equal(t, "Event type not handled", result.Message)
	mocks.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
