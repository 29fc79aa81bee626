package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is one imported catalog entry. Immutable once imported; a
// re-import replaces the whole catalog.
type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Reference   string          `gorm:"type:text;not null;uniqueIndex" json:"reference"`
	Description string          `gorm:"type:text" json:"description"`
	Barcode     string          `gorm:"type:text;index" json:"barcode"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price"`
	Position    int             `gorm:"not null" json:"position"`
}

func (Product) TableName() string { return "products" }

// ColumnMapping maps logical product fields to column indices of the raw CSV
// rows. Description and Barcode may be -1 when the file has no such column.
type ColumnMapping struct {
	Reference   int `json:"reference"`
	Description int `json:"description"`
	Barcode     int `json:"barcode"`
	Price       int `json:"price"`
}

func (m ColumnMapping) Validate() error {
	if m.Reference < 0 || m.Price < 0 {
		return ErrInvalidMapping
	}
	cols := []int{m.Reference, m.Price}
	if m.Description >= 0 {
		cols = append(cols, m.Description)
	}
	if m.Barcode >= 0 {
		cols = append(cols, m.Barcode)
	}
	seen := make(map[int]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c]; dup {
			return ErrInvalidMapping
		}
		seen[c] = struct{}{}
	}
	return nil
}

// RejectedRow reports one row that could not be imported and why. Rejected
// rows never fail the batch.
type RejectedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int           `json:"imported"`
	Rejected []RejectedRow `json:"rejected"`
}
