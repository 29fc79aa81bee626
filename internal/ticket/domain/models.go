package domain

import (
	"time"

	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
)

// Template is the process-wide ticket configuration: header and footer text
// plus the default VAT rate applied to new sales.
type Template struct {
	Header         string          `gorm:"type:text" json:"header"`
	Footer         string          `gorm:"type:text" json:"footer"`
	DefaultVATRate decimal.Decimal `gorm:"type:numeric(7,4)" json:"default_vat_rate"`
}

// TemplateRecord is the persisted template row. A single row (id 1) wins over
// the file-backed defaults once an explicit update has been saved.
type TemplateRecord struct {
	ID        int64 `gorm:"primaryKey"`
	Template  `gorm:"embedded"`
	UpdatedAt time.Time
}

func (TemplateRecord) TableName() string { return "ticket_templates" }

// UnitCount is the per-reference quantity summary on the closing ticket.
type UnitCount struct {
	Reference string          `json:"reference"`
	Units     decimal.Decimal `json:"units"`
}

// ClosingSummary carries the reconciled figures the closing ticket prints:
// taxable base, VAT accumulated per rate, and the cash total.
type ClosingSummary struct {
	Units       []UnitCount          `json:"units"`
	TaxableBase decimal.Decimal      `json:"taxable_base"`
	TaxByRate   []saledomain.RateTax `json:"tax_by_rate"`
	CashTotal   decimal.Decimal      `json:"cash_total"`
}
