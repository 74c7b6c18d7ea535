package cart

import (
	"context"
	"testing"
	"time"

	cartdomain "github.com/craftshop/backend/internal/domain/cart"
	"github.com/craftshop/backend/internal/domain/catalog"
	coupondomain "github.com/craftshop/backend/internal/domain/coupon"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCartRepository is a mock implementation of cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cartdomain.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartdomain.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cartdomain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartdomain.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cartdomain.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustStockBulk(ctx context.Context, adjustments []catalog.StockAdjustment, guardStock bool) error {
	args := m.Called(ctx, adjustments, guardStock)
	return args.Error(0)
}

// MockCouponRepository is a mock implementation of coupon.Repository
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupondomain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupondomain.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindValidByName(ctx context.Context, name string, now time.Time) (*coupondomain.Coupon, error) {
	args := m.Called(ctx, name, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupondomain.Coupon), args.Error(1)
}

func (m *MockCouponRepository) FindAll(ctx context.Context, filter shared.Filter) ([]coupondomain.Coupon, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]coupondomain.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Save(ctx context.Context, coupon *coupondomain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type cartServiceMocks struct {
	cartRepo    *MockCartRepository
	productRepo *MockProductRepository
	couponRepo  *MockCouponRepository
}

func createTestCartService(t *testing.T) (*CartService, *cartServiceMocks) {
	mocks := &cartServiceMocks{
		cartRepo:    new(MockCartRepository),
		productRepo: new(MockProductRepository),
		couponRepo:  new(MockCouponRepository),
	}
	logger, _ := zap.NewDevelopment()
	service := NewCartService(CartServiceConfig{
		CartRepo:    mocks.cartRepo,
		ProductRepo: mocks.productRepo,
		CouponRepo:  mocks.couponRepo,
		Logger:      logger,
	})
	return service, mocks
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates cart on first use and snapshots the effective price", func(t *testing.T) {
		service, mocks := createTestCartService(t)
		userID := uuid.New()
		product := &catalog.Product{
			ID:                 uuid.New(),
			Title:              "Vase",
			Price:              decimal.NewFromInt(100),
			PriceAfterDiscount: decimal.NewFromInt(80),
			ImageCover:         "vase.jpg",
		}

		mocks.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		mocks.cartRepo.On("FindByUser", ctx, userID).Return(nil, shared.ErrNotFound)
		mocks.cartRepo.On("Save", ctx, mock.AnythingOfType("*cart.Cart")).Return(nil)

		c, err := service.AddItem(ctx, userID, product.ID, "red")

		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.True(t, c.Items[0].Price.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, "vase.jpg", c.Items[0].ImageCover)
		assert.Equal(t, userID, c.UserID)
	})

	t.Run("adds to the existing cart", func(t *testing.T) {
		service, mocks := createTestCartService(t)
		userID := uuid.New()
		existing, err := cartdomain.NewCart(userID)
		require.NoError(t, err)
		product := &catalog.Product{ID: uuid.New(), Price: decimal.NewFromInt(25)}

		mocks.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		mocks.cartRepo.On("FindByUser", ctx, userID).Return(existing, nil)
		mocks.cartRepo.On("Save", ctx, existing).Return(nil)

		c, err := service.AddItem(ctx, userID, product.ID, "")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, c.ID)
		assert.Len(t, c.Items, 1)
	})

	t.Run("unknown product propagates not found", func(t *testing.T) {
		service, mocks := createTestCartService(t)
		productID := uuid.New()

		mocks.productRepo.On("FindByID", ctx, productID).Return(nil, shared.ErrNotFound)

		_, err := service.AddItem(ctx, uuid.New(), productID, "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCartService_ApplyCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a valid coupon", func(t *testing.T) {
		service, mocks := createTestCartService(t)
		userID := uuid.New()
		c, err := cartdomain.NewCart(userID)
		require.NoError(t, err)
		require.NoError(t, c.AddItem(uuid.New(), "", decimal.NewFromInt(200), ""))
		coupon := &coupondomain.Coupon{
			ID:       uuid.New(),
			Name:     "SUMMER20",
			Discount: decimal.NewFromInt(20),
		}

		mocks.couponRepo.On("FindValidByName", ctx, "SUMMER20", mock.AnythingOfType("time.Time")).
			Return(coupon, nil)
		mocks.cartRepo.On("FindByUser", ctx, userID).Return(c, nil)
		mocks.cartRepo.On("Save", ctx, c).Return(nil)

		got, err := service.ApplyCoupon(ctx, userID, "SUMMER20")

		require.NoError(t, err)
		assert.True(t, got.EffectiveTotal().Equal(decimal.NewFromInt(160)))
	})

	t.Run("invalid or expired code gets one generic rejection", func(t *testing.T) {
		service, mocks := createTestCartService(t)

		mocks.couponRepo.On("FindValidByName", ctx, "GHOST", mock.AnythingOfType("time.Time")).
			Return(nil, coupondomain.ErrInvalidOrExpired)

		_, err := service.ApplyCoupon(ctx, uuid.New(), "GHOST")

		assert.ErrorIs(t, err, coupondomain.ErrInvalidOrExpired)
		mocks.cartRepo.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
	})
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	service, mocks := createTestCartService(t)
	userID := uuid.New()

	mocks.cartRepo.On("DeleteByUser", ctx, userID).Return(nil)

	assert.NoError(t, service.Clear(ctx, userID))
	mocks.cartRepo.AssertExpectations(t)
}
