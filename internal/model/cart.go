package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers; both numbers and strings are accepted on input.
	decimal.MarshalJSONWithoutQuotes = true
}

// Storage limits: quantities are INTEGER and money columns are NUMERIC(12,2).
const MaxQuantity = math.MaxInt32

var MaxAmount = decimal.RequireFromString("9999999999.99")

// CartLine is one product-and-quantity entry in a user's cart.
type CartLine struct {
	UserID      uuid.UUID       `json:"-" db:"user_id"`
	ProductName string          `json:"name" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"price" db:"unit_price"`
	Image       string          `json:"img" db:"image"`
	Quantity    int             `json:"quantity" db:"quantity"`
	AddedAt     time.Time       `json:"-" db:"added_at"`
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartCount returns the total number of units across lines.
func CartCount(lines []CartLine) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

// AddToCartRequest is the payload of POST /add_to_cart.
type AddToCartRequest struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Image    string           `json:"img"`
	Quantity *int             `json:"quantity,omitempty"`
}

// ChangeQuantityRequest is the payload of POST /update_cart_quantity.
type ChangeQuantityRequest struct {
	Name   string `json:"name"`
	Change *int   `json:"change"`
}

// RemoveFromCartRequest is the payload of POST /remove_from_cart.
type RemoveFromCartRequest struct {
	Name string `json:"name"`
}

// UpdateCartRequest is the payload of the legacy POST /update_cart dispatcher.
type UpdateCartRequest struct {
	Action string `json:"action"`
	Name   string `json:"name"`
	Change *int   `json:"change"`
}

// CartTotal is the priced summary of a cart.
type CartTotal struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Delivery    decimal.Decimal `json:"delivery"`
	CoinsUsed   int64           `json:"coins_used"`
	Total       decimal.Decimal `json:"total"`
	CoinBalance int64           `json:"coin_balance"`
}
