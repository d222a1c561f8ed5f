package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cart          repository.CartRepository
	products      repository.ProductRepository
	users         repository.UserRepository
	engine        *pricing.Engine
	strictPricing bool
	logger        zerolog.Logger
	clock         func() time.Time
}

// NewCartService creates a new cart service. With strictPricing, products missing
// from the catalogue cannot be added.
func NewCartService(
	cart repository.CartRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	engine *pricing.Engine,
	strictPricing bool,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cart:          cart,
		products:      products,
		users:         users,
		engine:        engine,
		strictPricing: strictPricing,
		logger:        logger.With().Str("service", "cart").Logger(),
		clock:         time.Now,
	}
}

// Add increments the product's line by the requested quantity (default 1).
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (int, error) {
	if req == nil {
		return 0, model.NewValidationError(model.ErrCodeMissingField, "Request body is required")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return 0, model.NewValidationError(model.ErrCodeMissingField, "Product name is required")
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return 0, model.ErrInvalidQuantity
	}
	if quantity > model.MaxQuantity {
		return 0, model.ErrQuantityTooLarge
	}

	line, err := s.resolveLine(ctx, userID, name, req)
	if err != nil {
		return 0, err
	}
	line.Quantity = quantity

	err = withTx(ctx, s.cart, s.logger, func(tx pgx.Tx) error {
		return s.cart.Increment(ctx, tx, line)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("product", name).
		Int("quantity", quantity).
		Msg("added to cart")

	return s.Count(ctx, userID)
}

// resolveLine prices the line from the catalogue when the product is known.
func (s *cartService) resolveLine(ctx context.Context, userID uuid.UUID, name string, req *model.AddToCartRequest) (*model.CartLine, error) {
	line := &model.CartLine{
		UserID:      userID,
		ProductName: name,
		Image:       strings.TrimSpace(req.Image),
		AddedAt:     s.clock().UTC(),
	}

	product, err := s.products.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	if product != nil {
		line.UnitPrice = product.Price
		if product.Image != "" {
			line.Image = product.Image
		}
		return line, nil
	}

	if s.strictPricing {
		return nil, model.ErrProductNotFound
	}
	if req.Price == nil {
		return nil, model.NewValidationError(model.ErrCodeMissingField, "Price is required")
	}
	if !req.Price.IsPositive() {
		return nil, model.NewValidationError(model.ErrCodeInvalidField, "Price must be greater than zero")
	}

	line.UnitPrice = req.Price.Round(2)
	if line.UnitPrice.GreaterThan(model.MaxAmount) {
		return nil, model.ErrPriceTooLarge
	}
	return line, nil
}

// ChangeQuantity adds delta to the line. A resulting quantity of zero or less removes it.
// A missing line is left untouched.
func (s *cartService) ChangeQuantity(ctx context.Context, userID uuid.UUID, name string, delta int) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, model.NewValidationError(model.ErrCodeMissingField, "Product name is required")
	}

	err := withTx(ctx, s.cart, s.logger, func(tx pgx.Tx) error {
		line, err := s.cart.GetForUpdate(ctx, tx, userID, name)
		if err != nil || line == nil || delta == 0 {
			return err
		}

		if delta > model.MaxQuantity-line.Quantity {
			return model.ErrQuantityTooLarge
		}

		newQuantity := line.Quantity + delta
		if newQuantity <= 0 {
			return s.cart.Delete(ctx, tx, userID, name)
		}
		return s.cart.SetQuantity(ctx, tx, userID, name, newQuantity)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update cart: %w", err)
	}

	return s.Count(ctx, userID)
}

// Remove deletes the line if present.
func (s *cartService) Remove(ctx context.Context, userID uuid.UUID, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, model.NewValidationError(model.ErrCodeMissingField, "Product name is required")
	}

	err := withTx(ctx, s.cart, s.logger, func(tx pgx.Tx) error {
		return s.cart.Delete(ctx, tx, userID, name)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove from cart: %w", err)
	}

	return s.Count(ctx, userID)
}

// List returns the user's cart lines.
func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	lines, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return lines, nil
}

// Count returns the number of units in the user's cart.
func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	lines, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	return model.CartCount(lines), nil
}

// Clear empties the user's cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	var removed int64
	err := withTx(ctx, s.cart, s.logger, func(tx pgx.Tx) error {
		var err error
		removed, err = s.cart.DeleteAll(ctx, tx, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Str("user_id", userID.String()).Int64("lines", removed).Msg("cart cleared")
	return nil
}

// Total prices the cart with the requested coins against the current balance.
func (s *cartService) Total(ctx context.Context, userID uuid.UUID, coinsApplied int64) (*model.CartTotal, error) {
	lines, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	quote, err := s.engine.Quote(lines, coinsApplied, user.CoinBalance)
	if err != nil {
		return nil, err
	}

	return &model.CartTotal{
		Subtotal:    quote.Subtotal,
		Discount:    quote.Discount,
		Delivery:    quote.Delivery,
		CoinsUsed:   quote.CoinsUsed,
		Total:       quote.Total,
		CoinBalance: user.CoinBalance,
	}, nil
}
