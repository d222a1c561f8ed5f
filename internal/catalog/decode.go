package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// record is one line of a catalogue file.
type record struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"img"`
	Category string          `json:"category"`
}

func (r record) validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("id is required")
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(r.Category) == "":
		return fmt.Errorf("category is required")
	case r.Price.IsNegative():
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// decode reads gzipped JSON lines from r. Blank lines are skipped; any malformed line fails the file.
func decode(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	set := newProductSet(256)
	now := time.Now().UTC()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%s line %d: invalid JSON: %w", source, lineNo, err)
		}
		if err := rec.validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}

		set.Add(model.Product{
			ID:        strings.TrimSpace(rec.ID),
			Name:      strings.TrimSpace(rec.Name),
			Price:     rec.Price,
			Image:     rec.Image,
			Category:  strings.TrimSpace(rec.Category),
			CreatedAt: now,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}

	return set.Products(), nil
}
