package domain

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status is the sale lifecycle state. A charged sale is immutable.
type Status string

const (
	StatusOpen    Status = "open"
	StatusCharged Status = "charged"
)

var hundred = decimal.NewFromInt(100)

// ProductSnapshot carries the catalog fields copied onto a line at add time.
// Lines keep their own copy so later catalog re-imports never rewrite history.
type ProductSnapshot struct {
	Reference   string
	Description string
	Barcode     string
	UnitPrice   decimal.Decimal
}

// Line is one product entry within a sale. Quantity, prices and rates are
// decimals; nothing here is rounded — rounding happens at display time only.
type Line struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	SaleID          snowflake.ID    `gorm:"index" json:"sale_id"`
	Position        int             `json:"position"`
	Reference       string          `gorm:"type:text;not null" json:"reference"`
	Description     string          `gorm:"type:text" json:"description"`
	Barcode         string          `gorm:"type:text" json:"barcode"`
	Quantity        decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(7,4)" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(14,4)" json:"discount_amount"`
	VATRate         decimal.Decimal `gorm:"type:numeric(7,4)" json:"vat_rate"`
}

func (Line) TableName() string { return "sale_lines" }

// Subtotal is quantity * unit price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Deduction is the total discount taken off the line subtotal: the
// percentage share plus the fixed amount.
func (l Line) Deduction() decimal.Decimal {
	pct := l.Subtotal().Mul(l.DiscountPercent).Div(hundred)
	return pct.Add(l.DiscountAmount)
}

// Net is the taxable base of the line.
func (l Line) Net() decimal.Decimal {
	return l.Subtotal().Sub(l.Deduction())
}

// Tax is the VAT owed on the line net.
func (l Line) Tax() decimal.Decimal {
	return l.Net().Mul(l.VATRate).Div(hundred)
}

// Total is net plus tax.
func (l Line) Total() decimal.Decimal {
	return l.Net().Add(l.Tax())
}

func (l Line) validate() error {
	if !l.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if l.DiscountAmount.IsNegative() {
		return ErrInvalidDiscount
	}
	if l.Deduction().GreaterThan(l.Subtotal()) {
		return ErrInvalidDiscount
	}
	if l.VATRate.IsNegative() || l.VATRate.GreaterThan(hundred) {
		return ErrInvalidVATRate
	}
	return nil
}

// Sale is the line-item ledger for one in-progress sale.
type Sale struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	SessionID      snowflake.ID    `gorm:"index" json:"session_id"`
	Status         Status          `gorm:"type:text;not null" json:"status"`
	DefaultVATRate decimal.Decimal `gorm:"type:numeric(7,4)" json:"default_vat_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	ChargedAt      *time.Time      `json:"charged_at,omitempty"`
	Lines          []Line          `gorm:"foreignKey:SaleID" json:"lines"`
}

func (Sale) TableName() string { return "sales" }

// NewSale opens an empty sale using the template's default VAT rate.
func NewSale(id snowflake.ID, defaultVATRate decimal.Decimal, now time.Time) *Sale {
	return &Sale{
		ID:             id,
		Status:         StatusOpen,
		DefaultVATRate: defaultVATRate,
		CreatedAt:      now,
	}
}

// LineInput are the caller-supplied fields for a new line. Nil overrides fall
// back to the catalog price, zero discount and the sale's default VAT rate.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	DiscountAmount  *decimal.Decimal
	VATRate         *decimal.Decimal
}

// LinePatch replaces any subset of line fields on edit.
type LinePatch struct {
	Quantity        *decimal.Decimal
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	DiscountAmount  *decimal.Decimal
	VATRate         *decimal.Decimal
}

// AddLine appends a line for the given product. The line id comes from the
// caller so the ledger itself stays free of id-generation concerns.
func (s *Sale) AddLine(id snowflake.ID, p ProductSnapshot, in LineInput) (Line, error) {
	if s.Status != StatusOpen {
		return Line{}, ErrSaleFinalized
	}

	line := Line{
		ID:          id,
		SaleID:      s.ID,
		Reference:   p.Reference,
		Description: p.Description,
		Barcode:     p.Barcode,
		Quantity:    in.Quantity,
		UnitPrice:   p.UnitPrice,
		VATRate:     s.DefaultVATRate,
	}
	if in.UnitPrice != nil {
		line.UnitPrice = *in.UnitPrice
	}
	if in.DiscountPercent != nil {
		line.DiscountPercent = *in.DiscountPercent
	}
	if in.DiscountAmount != nil {
		line.DiscountAmount = *in.DiscountAmount
	}
	if in.VATRate != nil {
		line.VATRate = *in.VATRate
	}

	if err := line.validate(); err != nil {
		return Line{}, err
	}

	line.Position = len(s.Lines)
	s.Lines = append(s.Lines, line)
	return line, nil
}

// EditLine applies a patch to the line at the given position. Positions are
// recomputed on every read, so callers must re-resolve indices after removals.
func (s *Sale) EditLine(index int, patch LinePatch) (Line, error) {
	if s.Status != StatusOpen {
		return Line{}, ErrSaleFinalized
	}
	if index < 0 || index >= len(s.Lines) {
		return Line{}, ErrLineNotFound
	}

	line := s.Lines[index]
	if patch.Quantity != nil {
		line.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		line.UnitPrice = *patch.UnitPrice
	}
	if patch.DiscountPercent != nil {
		line.DiscountPercent = *patch.DiscountPercent
	}
	if patch.DiscountAmount != nil {
		line.DiscountAmount = *patch.DiscountAmount
	}
	if patch.VATRate != nil {
		line.VATRate = *patch.VATRate
	}

	if err := line.validate(); err != nil {
		return Line{}, err
	}

	s.Lines[index] = line
	return line, nil
}

// RemoveLine deletes the line at the given position and compacts the rest.
func (s *Sale) RemoveLine(index int) error {
	if s.Status != StatusOpen {
		return ErrSaleFinalized
	}
	if index < 0 || index >= len(s.Lines) {
		return ErrLineNotFound
	}

	s.Lines = append(s.Lines[:index], s.Lines[index+1:]...)
	for i := range s.Lines {
		s.Lines[i].Position = i
	}
	return nil
}

// Charge finalizes the sale. Irreversible; every mutator fails afterwards.
func (s *Sale) Charge(now time.Time) error {
	if s.Status != StatusOpen {
		return ErrSaleFinalized
	}
	if len(s.Lines) == 0 {
		return ErrEmptySale
	}
	s.Status = StatusCharged
	s.ChargedAt = &now
	return nil
}

// RateTax is the VAT breakdown entry for one distinct rate: the aggregate
// net at that rate and the tax computed on it (sum first, multiply once).
type RateTax struct {
	Rate decimal.Decimal `json:"rate"`
	Net  decimal.Decimal `json:"net"`
	Tax  decimal.Decimal `json:"tax"`
}

// Totals are the sale aggregates, always computed fresh from current lines.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	TaxByRate     []RateTax       `json:"tax_by_rate"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// Totals recomputes the aggregates from the current lines. Tax is computed on
// each rate's aggregate net rather than summed per rounded line, so the
// breakdown never accumulates rounding drift.
func (s *Sale) Totals() Totals {
	return SumLines(s.Lines)
}

// SumLines aggregates a set of lines into Totals. Shared with the session
// level aggregation, which folds every charged sale's lines through it.
func SumLines(lines []Line) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		GrandTotal:    decimal.Zero,
	}

	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal())
		t.DiscountTotal = t.DiscountTotal.Add(l.Deduction())
		bucket := t.rateBucket(l.VATRate)
		bucket.Net = bucket.Net.Add(l.Net())
	}

	for i := range t.TaxByRate {
		b := &t.TaxByRate[i]
		b.Tax = b.Net.Mul(b.Rate).Div(hundred)
		t.GrandTotal = t.GrandTotal.Add(b.Net).Add(b.Tax)
	}

	sortRateTaxes(t.TaxByRate)
	return t
}

func (t *Totals) rateBucket(rate decimal.Decimal) *RateTax {
	for i := range t.TaxByRate {
		if t.TaxByRate[i].Rate.Equal(rate) {
			return &t.TaxByRate[i]
		}
	}
	t.TaxByRate = append(t.TaxByRate, RateTax{Rate: rate, Net: decimal.Zero, Tax: decimal.Zero})
	return &t.TaxByRate[len(t.TaxByRate)-1]
}

func sortRateTaxes(taxes []RateTax) {
	sort.Slice(taxes, func(i, j int) bool {
		return taxes[i].Rate.LessThan(taxes[j].Rate)
	})
}
