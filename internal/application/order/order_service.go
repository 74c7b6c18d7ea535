package order

import (
	"context"
	"time"

	cartdomain "github.com/craftshop/backend/internal/domain/cart"
	"github.com/craftshop/backend/internal/domain/catalog"
	orderdomain "github.com/craftshop/backend/internal/domain/order"
	"github.com/craftshop/backend/internal/domain/shared"
	"github.com/craftshop/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService turns carts into orders. Both payment paths run the same
// pipeline: freeze the cart lines into an order, adjust inventory in one
// batch, then delete the cart. The deleted cart is what makes a replayed
// confirmation a no-op.
type OrderService struct {
	orderRepo   orderdomain.Repository
	cartRepo    cartdomain.Repository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// OrderServiceConfig contains dependencies for OrderService
type OrderServiceConfig struct {
	OrderRepo   orderdomain.Repository
	CartRepo    cartdomain.Repository
	ProductRepo catalog.ProductRepository
	Logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(cfg OrderServiceConfig) *OrderService {
	return &OrderService{
		orderRepo:   cfg.OrderRepo,
		cartRepo:    cfg.CartRepo,
		productRepo: cfg.ProductRepo,
		logger:      cfg.Logger,
	}
}

// CreateCashOrder materializes a cash-on-delivery order synchronously.
// Stock is prechecked up front and the batched adjustment is guarded, so
// a concurrent sale of the last unit fails the order rather than driving
// inventory negative.
func (s *OrderService) CreateCashOrder(ctx context.Context, userID, cartID uuid.UUID, address valueobject.ShippingAddress) (*orderdomain.Order, error) {
	c, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, shared.ErrForbidden
	}

	if err := s.precheckStock(ctx, c); err != nil {
		return nil, err
	}

	o, err := orderdomain.NewFromCart(userID, c, address, c.EffectiveTotal(), orderdomain.PaymentMethodCash)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	if err := s.productRepo.AdjustStockBulk(ctx, stockAdjustments(o), true); err != nil {
		// The precheck passed but another sale won the race. Undo the
		// order so the customer sees a clean failure.
		if delErr := s.orderRepo.Delete(ctx, o.ID); delErr != nil {
			s.logger.Error("Failed to roll back order after stock adjustment failure",
				zap.String("order_id", o.ID.String()),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.deleteCart(ctx, c.ID)

	s.logger.Info("Created cash order",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", o.TotalPrice.String()))
	return o, nil
}

// MaterializePaymentInput carries a confirmed online payment into order
// materialization
type MaterializePaymentInput struct {
	CartID          uuid.UUID
	UserID          uuid.UUID
	Address         valueobject.ShippingAddress
	PaidAmountMinor int64
	PaidAt          time.Time
}

// MaterializeFromPayment materializes an order from a confirmed card
// payment. The money has already moved, so stock is adjusted without a
// guard: overselling is reconciled manually rather than by failing a
// payment that cannot be un-made. A paid amount that disagrees with the
// cart total flags the order for review instead of blocking it.
func (s *OrderService) MaterializeFromPayment(ctx context.Context, input MaterializePaymentInput) (*orderdomain.Order, error) {
	c, err := s.cartRepo.FindByID(ctx, input.CartID)
	if err != nil {
		return nil, err
	}

	total := c.EffectiveTotal()
	o, err := orderdomain.NewFromCart(input.UserID, c, input.Address, total, orderdomain.PaymentMethodCard)
	if err != nil {
		return nil, err
	}
	o.MarkPaid(input.PaidAt)

	expectedMinor := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if input.PaidAmountMinor != expectedMinor {
		o.FlagForReview()
		s.logger.Warn("Paid amount disagrees with cart total, order flagged",
			zap.String("order_id", o.ID.String()),
			zap.Int64("paid_minor", input.PaidAmountMinor),
			zap.Int64("expected_minor", expectedMinor))
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	if err := s.productRepo.AdjustStockBulk(ctx, stockAdjustments(o), false); err != nil {
		s.logger.Error("Failed to adjust stock for paid order",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	s.deleteCart(ctx, c.ID)

	s.logger.Info("Materialized order from payment",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("total", o.TotalPrice.String()),
		zap.Bool("flagged", o.FlaggedForReview))
	return o, nil
}

// GetByID retrieves an order, restricted to its owner unless admin
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID, requesterID uuid.UUID, isAdmin bool) (*orderdomain.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != requesterID {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

// ListUserOrders retrieves a user's own orders
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]orderdomain.Order, error) {
	return s.orderRepo.FindByUser(ctx, userID, filter)
}

// ListAllResult is a page of orders with the total count
type ListAllResult struct {
	Orders []orderdomain.Order
	Total  int64
}

// ListAllOrders retrieves all orders (admin)
func (s *OrderService) ListAllOrders(ctx context.Context, filter shared.Filter) (*ListAllResult, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListAllResult{Orders: orders, Total: total}, nil
}

// UpdateToPaid marks an order as paid (admin, for cash collection)
func (s *OrderService) UpdateToPaid(ctx context.Context, id uuid.UUID) (*orderdomain.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.MarkPaid(time.Now())
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateToDelivered marks an order as delivered (admin)
func (s *OrderService) UpdateToDelivered(ctx context.Context, id uuid.UUID) (*orderdomain.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.MarkDelivered(time.Now())
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes an order (admin override; not part of the normal lifecycle)
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Deleted order", zap.String("order_id", id.String()))
	return nil
}

// precheckStock verifies every line can be satisfied before any write.
// Only the cash path prechecks; a confirmed card payment is materialized
// regardless of stock.
func (s *OrderService) precheckStock(ctx context.Context, c *cartdomain.Cart) error {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for idx := range products {
		byID[products[idx].ID] = &products[idx]
	}

	// The same product can appear on several lines with different colors;
	// stock is checked against the summed demand.
	demand := make(map[uuid.UUID]int64, len(c.Items))
	for _, item := range c.Items {
		demand[item.ProductID] += item.Quantity
	}

	for productID, quantity := range demand {
		product, ok := byID[productID]
		if !ok {
			return shared.ErrNotFound
		}
		if !product.HasStock(quantity) {
			return shared.ErrInsufficientStock
		}
	}
	return nil
}

// deleteCart removes the materialized cart. Failures are logged, not
// returned: the order exists and must be reported as created.
func (s *OrderService) deleteCart(ctx context.Context, cartID uuid.UUID) {
	if err := s.cartRepo.Delete(ctx, cartID); err != nil {
		s.logger.Error("Failed to delete cart after materialization",
			zap.String("cart_id", cartID.String()),
			zap.Error(err))
	}
}

func stockAdjustments(o *orderdomain.Order) []catalog.StockAdjustment {
	demand := make(map[uuid.UUID]int64, len(o.Items))
	order := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		if _, seen := demand[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		demand[item.ProductID] += item.Quantity
	}

	adjustments := make([]catalog.StockAdjustment, 0, len(order))
	for _, productID := range order {
		adjustments = append(adjustments, catalog.StockAdjustment{
			ProductID: productID,
			Quantity:  demand[productID],
		})
	}
	return adjustments
}
