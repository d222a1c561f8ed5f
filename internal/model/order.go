package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// PaymentMethod is how a simulated payment was settled.
type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "cod"
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentWallet     PaymentMethod = "wallet"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentUPI, PaymentNetBanking, PaymentWallet:
		return true
	}
	return false
}

// InitialStatus is the status a new order starts in. Prepaid methods are settled immediately.
func (m PaymentMethod) InitialStatus() OrderStatus {
	if m == PaymentCOD {
		return OrderStatusProcessing
	}
	return OrderStatusConfirmed
}

// Order is a completed checkout.
type Order struct {
	ID            uuid.UUID       `json:"-" db:"id"`
	UserID        uuid.UUID       `json:"-" db:"user_id"`
	Code          string          `json:"order_id" db:"code"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Delivery      decimal.Decimal `json:"delivery" db:"delivery"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	CoinsUsed     int64           `json:"coins_used" db:"coins_used"`
	Status        OrderStatus     `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"order_date" db:"created_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// OrderItem is the snapshot of a cart line at checkout.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductName string          `json:"name" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"price" db:"unit_price"`
	Image       string          `json:"img" db:"image"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

// CheckoutRequest is the payload of POST /checkout.
// TotalAmount is the total the client displayed; CartItems is accepted for compatibility and ignored.
type CheckoutRequest struct {
	CoinsUsed     int64            `json:"coins_used"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	TotalAmount   *decimal.Decimal `json:"total_amount,omitempty"`
	CartItems     []CartLine       `json:"cart_items,omitempty"`
}

// CheckoutResult is returned after a successful checkout.
type CheckoutResult struct {
	OrderCode   string          `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
