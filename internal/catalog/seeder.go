package catalog

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Seeder loads catalogue files concurrently and upserts the merged result.
type Seeder struct {
	loader Loader
	store  Store
	logger zerolog.Logger
}

// NewSeeder creates a seeder reading through loader and writing to store.
func NewSeeder(loader Loader, store Store, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads every path and upserts the products. When two files define the same
// product name, the file listed later wins. Any file failure aborts the seed.
func (s *Seeder) Seed(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	s.logger.Info().Int("file_count", len(paths)).Msg("seeding product catalogue")

	type loadResult struct {
		products []model.Product
		err      error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			products, err := s.loader.Load(ctx, path)
			results[index] = loadResult{products: products, err: err}
		}(i, path)
	}
	wg.Wait()

	merged := newProductSet(256)
	for i, result := range results {
		if result.err != nil {
			s.logger.Error().Err(result.err).Str("file", paths[i]).Msg("failed to load catalogue file")
			return 0, fmt.Errorf("failed to load catalogue file %s: %w", paths[i], result.err)
		}
		for _, p := range result.products {
			merged.Add(p)
		}
	}

	if err := s.store.UpsertBatch(ctx, merged.Products()); err != nil {
		return 0, fmt.Errorf("failed to store catalogue: %w", err)
	}

	s.logger.Info().Int("products", merged.Size()).Msg("product catalogue seeded")
	return merged.Size(), nil
}
