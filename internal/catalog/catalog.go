// Package catalog loads product catalogue files and seeds them into the product store.
package catalog

import (
	"context"

	"storefront/internal/model"
)

// Loader reads one gzipped JSON-lines catalogue file.
type Loader interface {
	// Load returns the products in the file, de-duplicated by name with the last entry winning.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Store persists catalogue products.
type Store interface {
	UpsertBatch(ctx context.Context, products []model.Product) error
}
