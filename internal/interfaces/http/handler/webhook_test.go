package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	checkoutapp "github.com/craftshop/backend/internal/application/checkout"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/infrastructure/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// MockPaymentGateway is a mock implementation of checkout.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, input payment.CheckoutSessionInput) (*payment.CheckoutSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSessionOutput), args.Error(1)
}

func (m *MockPaymentGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(stripe.Event), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

type webhookHandlerMocks struct {
	gateway     *MockPaymentGateway
	idempotency *MockIdempotencyStore
}

func createWebhookTestRouter(t *testing.T) (*gin.Engine, *webhookHandlerMocks) {
	gin.SetMode(gin.TestMode)

	mocks := &webhookHandlerMocks{
		gateway:     new(MockPaymentGateway),
		idempotency: new(MockIdempotencyStore),
	}
	logger, _ := zap.NewDevelopment()
	webhookService := checkoutapp.NewWebhookService(checkoutapp.WebhookServiceConfig{
		Gateway:     mocks.gateway,
		Idempotency: mocks.idempotency,
		EventTTL:    time.Hour,
		Logger:      logger,
	})
	handler := NewWebhookHandler(webhookService)

	router := gin.New()
	group := router.Group("/api/v1")
	handler.RegisterRoutes(group)

	return router, mocks
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook-checkout", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_HandleCheckoutWebhook(t *testing.T) {
	t.Run("missing signature header is rejected with 401", func(t *testing.T) {
		router, mocks := createWebhookTestRouter(t)

		w := postWebhook(router, []byte(`{}`), "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mocks.gateway.AssertNotCalled(t, "ConstructEvent", mock.Anything, mock.Anything)
	})

	t.Run("unverifiable payload is rejected with 401", func(t *testing.T) {
		router, mocks := createWebhookTestRouter(t)
		body := []byte(`{"type":"checkout.session.completed"}`)

		mocks.gateway.On("ConstructEvent", body, "t=1,v1=bad").
			Return(stripe.Event{}, shared.ErrUnauthorized)

		w := postWebhook(router, body, "t=1,v1=bad")

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp WebhookResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Received)
	})

	t.Run("oversized payload is rejected with 413", func(t *testing.T) {
		router, mocks := createWebhookTestRouter(t)
		body := bytes.Repeat([]byte("a"), maxWebhookPayloadSize+1)

		w := postWebhook(router, body, "t=1,v1=sig")

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		mocks.gateway.AssertNotCalled(t, "ConstructEvent", mock.Anything, mock.Anything)
	})

	t.Run("verified event is acknowledged with 200", func(t *testing.T) {
		router, mocks := createWebhookTestRouter(t)
		body := []byte(`{"type":"customer.created"}`)
		event := stripe.Event{
			ID:      "evt_ack",
			Type:    "customer.created",
			Created: time.Now().Unix(),
			Data:    &stripe.EventData{Raw: []byte(`{}`)},
		}

		mocks.gateway.On("ConstructEvent", body, "t=1,v1=good").Return(event, nil)
		mocks.idempotency.On("IsProcessed", mock.Anything, "evt_ack").Return(false, nil)

		w := postWebhook(router, body, "t=1,v1=good")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp WebhookResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Received)
		assert.Equal(t, "evt_ack", resp.EventID)
		assert.Equal(t, "customer.created", resp.EventType)
	})

	t.Run("redelivered event is still acknowledged with 200", func(t *testing.T) {
		router, mocks := createWebhookTestRouter(t)
		body := []byte(`{"type":"checkout.session.completed"}`)
		event := stripe.Event{
			ID:      "evt_dup",
			Type:    "checkout.session.completed",
			Created: time.Now().Unix(),
			Data:    &stripe.EventData{Raw: []byte(`{}`)},
		}

		mocks.gateway.On("ConstructEvent", body, "t=1,v1=good").Return(event, nil)
		mocks.idempotency.On("IsProcessed", mock.Anything, "evt_dup").Return(true, nil)

		w := postWebhook(router, body, "t=1,v1=good")

		assert.Equal(t, http.StatusOK, w.Code)

		var resp WebhookResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Received)
		assert.Equal(t, "Event already processed", resp.Message)
	})
}
