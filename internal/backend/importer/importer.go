// Package importer loads catalog exports into the produits table. Exports
// come from either convention (prix/nom or price/name), so records are
// normalized through internal/wire before hitting the repository.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"storefront-engine/internal/domain"
	"storefront-engine/internal/wire"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// JSONImporter reads a JSON array of catalog records and inserts/updates
// products.
type JSONImporter struct {
	reader      io.Reader
	productRepo ProductWriter
}

func NewJSONImporter(r io.Reader, repo ProductWriter) *JSONImporter {
	return &JSONImporter{
		reader:      r,
		productRepo: repo,
	}
}

// Run parses the export and upserts every record, returning the count of
// imported products. The first invalid record aborts the run.
func (i *JSONImporter) Run(ctx context.Context) (int, error) {
	var records []wire.ProductRecord
	if err := json.NewDecoder(i.reader).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode export: %w", err)
	}

	imported := 0
	for n, rec := range records {
		p := wire.Product(rec)
		if err := i.save(ctx, n, p); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *JSONImporter) save(ctx context.Context, n int, p domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("record %d: missing nom", n)
	}
	if p.Price < 0 {
		return fmt.Errorf("record %d (%s): negative prix", n, p.Name)
	}
	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	return nil
}
