package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner starts database transactions. Services own the transaction boundary and
// pass the pgx.Tx into the repository methods that must run inside it.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// UserRepository defines data access for the identity store.
type UserRepository interface {
	TxBeginner

	// Create inserts a user. Returns model.ErrEmailTaken when the email already exists.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns the user with the given email, or nil when none exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns the user with the given ID, or nil when none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetForUpdate returns the user row locked for the rest of tx, or nil when none exists.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.User, error)

	// UpdateProfile sets username and mobile within tx.
	UpdateProfile(ctx context.Context, tx pgx.Tx, id uuid.UUID, username, mobile string) error

	// DebitCoins subtracts coins from the balance within tx.
	// Returns model.ErrInsufficientCoins when the balance is too small.
	DebitCoins(ctx context.Context, tx pgx.Tx, id uuid.UUID, coins int64) error
}

// AddressRepository defines data access for the address book.
type AddressRepository interface {
	TxBeginner

	// Create inserts an address within tx.
	Create(ctx context.Context, tx pgx.Tx, address *model.Address) error

	// ClearDefault unsets the default flag on every address of the user within tx.
	ClearDefault(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error

	// MarkDefault flags one address as default within tx. Returns false when it is not owned by the user.
	MarkDefault(ctx context.Context, tx pgx.Tx, userID, addressID uuid.UUID) (bool, error)

	// LockOwner locks the user's row for the rest of tx so default-flag changes
	// for that user run one at a time. Returns false when the user does not exist.
	LockOwner(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (bool, error)

	// CountByUser returns how many addresses the user has, read within tx.
	CountByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int, error)

	// ListByUser returns the user's addresses, default first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error)

	// HasAny reports whether the user has at least one address.
	HasAny(ctx context.Context, userID uuid.UUID) (bool, error)

	// Delete removes one of the user's addresses. Returns false when nothing was deleted.
	Delete(ctx context.Context, userID, addressID uuid.UUID) (bool, error)
}

// CartRepository defines data access for the cart ledger.
type CartRepository interface {
	TxBeginner

	// Increment adds line.Quantity to the (user, product) line, inserting it when absent.
	Increment(ctx context.Context, tx pgx.Tx, line *model.CartLine) error

	// GetForUpdate returns the line locked for the rest of tx, or nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productName string) (*model.CartLine, error)

	// SetQuantity overwrites the quantity of an existing line within tx.
	SetQuantity(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productName string, quantity int) error

	// Delete removes a line within tx. Deleting an absent line is not an error.
	Delete(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productName string) error

	// DeleteAll removes every line of the user within tx and returns the number removed.
	DeleteAll(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error)

	// ListForUpdate returns the user's lines locked for the rest of tx.
	ListForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartLine, error)

	// List returns the user's lines in a stable order.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
}

// OrderRepository defines data access for the order journal.
type OrderRepository interface {
	TxBeginner

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// ListByUser returns the user's orders, newest first, without items.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetByCode returns the user's order with its items, or nil when not found.
	GetByCode(ctx context.Context, userID uuid.UUID, code string) (*model.Order, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products with pagination, optionally filtered by category.
	GetAll(ctx context.Context, category string, limit, offset int) ([]model.Product, error)

	// GetByName retrieves a single product by its unique name, or nil when none exists.
	GetByName(ctx context.Context, name string) (*model.Product, error)

	// UpsertBatch inserts or updates products keyed by ID.
	UpsertBatch(ctx context.Context, products []model.Product) error
}
