package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product categories shown by the storefront.
const (
	CategoryMobile      = "Mobile"
	CategoryLaptop      = "Laptop"
	CategoryTV          = "TV"
	CategorySoundSystem = "Sound_System"
)

// Product represents an item in the catalogue.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Image     string          `json:"img" db:"image"`
	Category  string          `json:"category" db:"category"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
