package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so the HTTP boundary can map them to a status.
type ErrorKind string

const (
	KindUnauthenticated   ErrorKind = "UNAUTHENTICATED"
	KindProfileIncomplete ErrorKind = "PROFILE_INCOMPLETE"
	KindEmptyCart         ErrorKind = "EMPTY_CART"
	KindInsufficientCoins ErrorKind = "INSUFFICIENT_COINS"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindValidation        ErrorKind = "VALIDATION"
	KindInternal          ErrorKind = "INTERNAL"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidField       = "INVALID_FIELD"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidCoins       = "INVALID_COINS"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeProfileIncomplete  = "PROFILE_INCOMPLETE"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInsufficientCoins  = "INSUFFICIENT_COINS"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeAddressNotFound    = "ADDRESS_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeCartChanged        = "CART_CHANGED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business failure carrying its kind and a client-safe message.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a missing or malformed request field.
func NewValidationError(code, format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, code, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of err, or KindInternal when err is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrUnauthenticated    = NewDomainError(KindUnauthenticated, ErrCodeUnauthenticated, "Please log in to continue")
	ErrInvalidCredentials = NewDomainError(KindUnauthenticated, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrProfileIncomplete  = NewDomainError(KindProfileIncomplete, ErrCodeProfileIncomplete, "Please complete your profile and add an address")
	ErrEmptyCart          = NewDomainError(KindEmptyCart, ErrCodeEmptyCart, "Your cart is empty")
	ErrInsufficientCoins  = NewDomainError(KindInsufficientCoins, ErrCodeInsufficientCoins, "Not enough coins in your balance")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrAddressNotFound    = NewDomainError(KindNotFound, ErrCodeAddressNotFound, "Address not found")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrEmailTaken         = NewDomainError(KindConflict, ErrCodeEmailTaken, "An account with this email already exists")
	ErrCartChanged        = NewDomainError(KindConflict, ErrCodeCartChanged, "Your cart changed, please review the total and try again")
	ErrInvalidQuantity    = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrNegativeCoins      = NewDomainError(KindValidation, ErrCodeInvalidCoins, "Coins used cannot be negative")
	ErrQuantityTooLarge   = NewDomainError(KindValidation, ErrCodeInvalidQuantity, fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity))
	ErrPriceTooLarge      = NewDomainError(KindValidation, ErrCodeInvalidField, "Price cannot exceed "+MaxAmount.String())
	ErrOrderTooLarge      = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Order total cannot exceed "+MaxAmount.String())
)
