package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var ordersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_orders_placed_total",
	Help: "Orders committed at checkout.",
}, []string{"payment_method"})

// publishTimeout bounds the best-effort event publish after a checkout commits.
const publishTimeout = 5 * time.Second

// checkoutService implements CheckoutService.
type checkoutService struct {
	gate      Gatekeeper
	users     repository.UserRepository
	cart      repository.CartRepository
	orders    repository.OrderRepository
	engine    *pricing.Engine
	publisher events.Publisher
	codes     *orderCodeGenerator
	logger    zerolog.Logger
	clock     func() time.Time
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	gate Gatekeeper,
	users repository.UserRepository,
	cart repository.CartRepository,
	orders repository.OrderRepository,
	engine *pricing.Engine,
	publisher events.Publisher,
	logger zerolog.Logger,
) CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &checkoutService{
		gate:      gate,
		users:     users,
		cart:      cart,
		orders:    orders,
		engine:    engine,
		publisher: publisher,
		codes:     newOrderCodeGenerator(),
		logger:    logger.With().Str("service", "checkout").Logger(),
		clock:     time.Now,
	}
}

// Checkout converts the user's cart into an order.
// The cart lines and the user row are locked for the whole transaction, so the price is
// computed on exactly the lines that are recorded and cleared.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (_ *model.CheckoutResult, err error) {
	if req == nil {
		req = &model.CheckoutRequest{}
	}

	access, err := s.gate.Gate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	if err := access.Err(); err != nil {
		return nil, err
	}

	method := model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(req.PaymentMethod))))
	if method == "" {
		method = model.PaymentCOD
	}
	if !method.Valid() {
		return nil, model.NewValidationError(model.ErrCodeInvalidField, "Unsupported payment method %q", req.PaymentMethod)
	}
	if req.CoinsUsed < 0 {
		return nil, model.ErrNegativeCoins
	}

	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	lines, err := s.cart.ListForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	user, err := s.users.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	quote, err := s.engine.Quote(lines, req.CoinsUsed, user.CoinBalance)
	if err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID.String()).Msg("checkout rejected by pricing")
		return nil, err
	}
	if quote.Subtotal.GreaterThan(model.MaxAmount) {
		return nil, model.ErrOrderTooLarge
	}

	if req.TotalAmount != nil && !req.TotalAmount.Equal(quote.Total) {
		s.logger.Info().
			Str("user_id", userID.String()).
			Str("client_total", req.TotalAmount.String()).
			Str("server_total", quote.Total.String()).
			Msg("checkout total mismatch")
		return nil, model.ErrCartChanged
	}

	order := &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Code:          s.codes.Next(),
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Delivery:      quote.Delivery,
		TotalAmount:   quote.Total,
		PaymentMethod: method,
		CoinsUsed:     quote.CoinsUsed,
		Status:        method.InitialStatus(),
		CreatedAt:     s.clock().UTC(),
	}

	if err = s.orders.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	items := make([]model.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Image:       line.Image,
			Quantity:    line.Quantity,
		}
	}
	order.Items = items

	if err = s.orders.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	if _, err = s.cart.DeleteAll(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	if err = s.users.DebitCoins(ctx, tx, userID, quote.CoinsUsed); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_code", order.Code).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	ordersPlaced.WithLabelValues(string(method)).Inc()

	s.logger.Info().
		Str("order_code", order.Code).
		Str("user_id", userID.String()).
		Str("total", order.TotalAmount.String()).
		Int64("coins_used", order.CoinsUsed).
		Int("item_count", len(items)).
		Msg("order placed")

	s.publishOrderPlaced(ctx, order)

	return &model.CheckoutResult{
		OrderCode:   order.Code,
		TotalAmount: order.TotalAmount,
	}, nil
}

// publishOrderPlaced emits the event without affecting the committed checkout.
func (s *checkoutService) publishOrderPlaced(ctx context.Context, order *model.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	items := make([]events.OrderPlacedItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = events.OrderPlacedItem{Name: item.ProductName, UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}

	err := s.publisher.PublishOrderPlaced(ctx, events.OrderPlaced{
		OrderCode:     order.Code,
		UserID:        order.UserID.String(),
		TotalAmount:   order.TotalAmount,
		CoinsUsed:     order.CoinsUsed,
		PaymentMethod: string(order.PaymentMethod),
		Status:        string(order.Status),
		Items:         items,
		OccurredAt:    order.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_code", order.Code).Msg("failed to publish order event")
	}
}

// ListOrders returns the user's orders, newest first.
func (s *checkoutService) ListOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders with its items.
func (s *checkoutService) GetOrder(ctx context.Context, userID uuid.UUID, code string) (*model.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orders.GetByCode(ctx, userID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}
