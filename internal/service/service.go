package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations on the product catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination, optionally filtered by category.
	GetAll(ctx context.Context, category string, limit, offset int) ([]model.Product, error)

	// GetByName retrieves a single product by its name.
	GetByName(ctx context.Context, name string) (*model.Product, error)
}

// Gatekeeper decides whether a user may reach cart and checkout operations.
type Gatekeeper interface {
	// Gate resolves the user and reports whether they are logged in with a complete profile.
	// uuid.Nil means no identity was presented.
	Gate(ctx context.Context, userID uuid.UUID) (model.Access, error)
}

// AuthService defines account and profile operations.
type AuthService interface {
	Gatekeeper

	// Register creates an account. Returns model.ErrEmailTaken for a duplicate email.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Login verifies credentials. Every failure is model.ErrInvalidCredentials.
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, error)

	// Profile returns the user with their completion state.
	Profile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error)

	// CompleteProfile sets username and mobile and saves the address as default, atomically.
	CompleteProfile(ctx context.Context, userID uuid.UUID, req *model.CompleteProfileRequest) error
}

// AddressService defines address book operations.
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
	Add(ctx context.Context, userID uuid.UUID, req *model.AddressRequest) (*model.Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
}

// CartService defines cart ledger operations. Mutations return the updated cart count.
type CartService interface {
	Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (int, error)
	ChangeQuantity(ctx context.Context, userID uuid.UUID, name string, delta int) (int, error)
	Remove(ctx context.Context, userID uuid.UUID, name string) (int, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Total(ctx context.Context, userID uuid.UUID, coinsApplied int64) (*model.CartTotal, error)
}

// CheckoutService converts carts into orders and reads the order journal.
type CheckoutService interface {
	// Checkout prices the cart and atomically records the order, clears the cart and debits coins.
	Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.CheckoutResult, error)

	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetOrder returns one of the user's orders with its items.
	GetOrder(ctx context.Context, userID uuid.UUID, code string) (*model.Order, error)
}
