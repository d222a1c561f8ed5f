package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"img"`
	Category string          `json:"category"`
}

// Writes two sample catalogue files for CATALOG_FILES. The second file reprices
// "Laptop Pro 14", so loading base then sale shows the later file winning.
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create directory")
	}

	catalogues := map[string][]product{
		"base.jsonl.gz": {
			{ID: "P001", Name: "Smart TV 43", Price: decimal.NewFromInt(30000), Image: "/static/img/tv.png", Category: model.CategoryTV},
			{ID: "P002", Name: "Smartphone X", Price: decimal.NewFromInt(25000), Image: "/static/img/phone.png", Category: model.CategoryMobile},
			{ID: "P003", Name: "Laptop Pro 14", Price: decimal.NewFromInt(65000), Image: "/static/img/laptop.png", Category: model.CategoryLaptop},
			{ID: "P004", Name: "Soundbar 2.1", Price: decimal.RequireFromString("8999.50"), Image: "/static/img/soundbar.png", Category: model.CategorySoundSystem},
		},
		"sale.jsonl.gz": {
			{ID: "P003", Name: "Laptop Pro 14", Price: decimal.NewFromInt(59999), Image: "/static/img/laptop.png", Category: model.CategoryLaptop},
			{ID: "P005", Name: "Bluetooth Speaker", Price: decimal.NewFromInt(2499), Image: "/static/img/speaker.png", Category: model.CategorySoundSystem},
		},
	}

	for filename, products := range catalogues {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, products); err != nil {
			logger.Fatal().Err(err).Str("file", filePath).Msg("failed to create catalogue file")
		}

		logger.Info().Str("file", filePath).Int("products", len(products)).Msg("catalogue file created")
	}

	logger.Info().Msgf("set CATALOG_FILES=%s,%s", filepath.Join(dataDir, "base.jsonl.gz"), filepath.Join(dataDir, "sale.jsonl.gz"))
}

func createCatalogFile(filePath string, products []product) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := json.NewEncoder(gzipWriter)
	for _, p := range products {
		if err := encoder.Encode(p); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to write product %s: %w", p.ID, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}
