package domain

import (
	"context"

	"gorm.io/gorm"
)

type Service interface {
	// ImportProducts replaces the catalog from raw CSV rows projected through
	// the column mapping. Row-level failures are reported in the result; only
	// an unusable mapping fails the call.
	ImportProducts(ctx context.Context, rows [][]string, mapping ColumnMapping) (ImportResult, error)
	// Find matches reference (exact, case-insensitive), barcode (exact) and
	// description (substring, case-insensitive), in that precedence.
	Find(ctx context.Context, query string) []Product
	All(ctx context.Context) []Product
	// Lookup resolves one product by exact reference, falling back to exact
	// barcode so scanned codes resolve directly.
	Lookup(ctx context.Context, reference string) (Product, error)
}

type Repository interface {
	ReplaceAll(ctx context.Context, db *gorm.DB, products []Product) error
	ListAll(ctx context.Context, db *gorm.DB) ([]Product, error)
}
