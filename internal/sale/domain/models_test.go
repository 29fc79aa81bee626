package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testSale(t *testing.T, rate string) *Sale {
	t.Helper()
	return NewSale(1, dec(rate), time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestAddLineDefaults(t *testing.T) {
	sale := testSale(t, "21")

	line, err := sale.AddLine(10, ProductSnapshot{
		Reference:   "A001",
		Description: "Cafe molido 250g",
		UnitPrice:   dec("3.50"),
	}, LineInput{Quantity: dec("2")})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	assert.True(t, line.UnitPrice.Equal(dec("3.50")), "unit price defaults to catalog price")
	assert.True(t, line.VATRate.Equal(dec("21")), "vat rate defaults to sale default")
	assert.True(t, line.DiscountPercent.IsZero())
	assert.True(t, line.DiscountAmount.IsZero())
	assert.Equal(t, 0, line.Position)
}

func TestAddLineOverrides(t *testing.T) {
	sale := testSale(t, "21")

	line, err := sale.AddLine(10, ProductSnapshot{Reference: "A001", UnitPrice: dec("3.50")}, LineInput{
		Quantity:        dec("1"),
		UnitPrice:       decPtr("2.99"),
		DiscountPercent: decPtr("10"),
		VATRate:         decPtr("10"),
	})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	assert.True(t, line.UnitPrice.Equal(dec("2.99")))
	assert.True(t, line.VATRate.Equal(dec("10")))
	assert.True(t, line.DiscountPercent.Equal(dec("10")))
}

func TestAddLineValidation(t *testing.T) {
	product := ProductSnapshot{Reference: "A001", UnitPrice: dec("5.00")}

	cases := []struct {
		name string
		in   LineInput
		want error
	}{
		{"zero quantity", LineInput{Quantity: dec("0")}, ErrInvalidQuantity},
		{"negative quantity", LineInput{Quantity: dec("-1")}, ErrInvalidQuantity},
		{"negative price", LineInput{Quantity: dec("1"), UnitPrice: decPtr("-0.01")}, ErrInvalidPrice},
		{"percent above 100", LineInput{Quantity: dec("1"), DiscountPercent: decPtr("101")}, ErrInvalidDiscount},
		{"negative percent", LineInput{Quantity: dec("1"), DiscountPercent: decPtr("-5")}, ErrInvalidDiscount},
		{"negative amount", LineInput{Quantity: dec("1"), DiscountAmount: decPtr("-1")}, ErrInvalidDiscount},
		{"amount above subtotal", LineInput{Quantity: dec("1"), DiscountAmount: decPtr("5.01")}, ErrInvalidDiscount},
		{"rate above 100", LineInput{Quantity: dec("1"), VATRate: decPtr("150")}, ErrInvalidVATRate},
		{"negative rate", LineInput{Quantity: dec("1"), VATRate: decPtr("-1")}, ErrInvalidVATRate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sale := testSale(t, "21")
			_, err := sale.AddLine(10, product, tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if len(sale.Lines) != 0 {
				t.Fatalf("rejected line must not be appended")
			}
		})
	}
}

func TestEditLine(t *testing.T) {
	sale := testSale(t, "21")
	_, err := sale.AddLine(10, ProductSnapshot{Reference: "A001", UnitPrice: dec("5.00")}, LineInput{Quantity: dec("1")})
	require.NoError(t, err)

	line, err := sale.EditLine(0, LinePatch{Quantity: decPtr("3"), DiscountPercent: decPtr("50")})
	require.NoError(t, err)
	assert.True(t, line.Quantity.Equal(dec("3")))
	assert.True(t, line.DiscountPercent.Equal(dec("50")))
	assert.True(t, line.UnitPrice.Equal(dec("5.00")), "unpatched fields survive")

	// An invalid patch must leave the stored line untouched.
	_, err = sale.EditLine(0, LinePatch{Quantity: decPtr("0")})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.True(t, sale.Lines[0].Quantity.Equal(dec("3")))

	_, err = sale.EditLine(5, LinePatch{})
	assert.ErrorIs(t, err, ErrLineNotFound)
	_, err = sale.EditLine(-1, LinePatch{})
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveLineRenumbers(t *testing.T) {
	sale := testSale(t, "21")
	for _, ref := range []string{"A", "B", "C"} {
		_, err := sale.AddLine(10, ProductSnapshot{Reference: ref, UnitPrice: dec("1.00")}, LineInput{Quantity: dec("1")})
		require.NoError(t, err)
	}

	require.NoError(t, sale.RemoveLine(1))

	require.Len(t, sale.Lines, 2)
	assert.Equal(t, "A", sale.Lines[0].Reference)
	assert.Equal(t, "C", sale.Lines[1].Reference)
	assert.Equal(t, 0, sale.Lines[0].Position)
	assert.Equal(t, 1, sale.Lines[1].Position)

	assert.ErrorIs(t, sale.RemoveLine(2), ErrLineNotFound)
}

func TestChargeLifecycle(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	sale := testSale(t, "21")
	if err := sale.Charge(now); !errors.Is(err, ErrEmptySale) {
		t.Fatalf("charging an empty sale: got %v, want ErrEmptySale", err)
	}

	_, err := sale.AddLine(10, ProductSnapshot{Reference: "A001", UnitPrice: dec("5.00")}, LineInput{Quantity: dec("1")})
	require.NoError(t, err)
	require.NoError(t, sale.Charge(now))

	if sale.Status != StatusCharged {
		t.Fatalf("status = %s, want charged", sale.Status)
	}
	if sale.ChargedAt == nil || !sale.ChargedAt.Equal(now) {
		t.Fatalf("ChargedAt not set to charge time")
	}

	// Every mutator fails once finalized.
	_, err = sale.AddLine(11, ProductSnapshot{Reference: "B001", UnitPrice: dec("1.00")}, LineInput{Quantity: dec("1")})
	assert.ErrorIs(t, err, ErrSaleFinalized)
	_, err = sale.EditLine(0, LinePatch{Quantity: decPtr("2")})
	assert.ErrorIs(t, err, ErrSaleFinalized)
	assert.ErrorIs(t, sale.RemoveLine(0), ErrSaleFinalized)
	assert.ErrorIs(t, sale.Charge(now), ErrSaleFinalized)
}

func TestTotalsMixedRates(t *testing.T) {
	sale := testSale(t, "21")

	// 2 x 10.00 at 21% -> net 20.00, tax 4.20
	_, err := sale.AddLine(10, ProductSnapshot{Reference: "A", UnitPrice: dec("10.00")}, LineInput{Quantity: dec("2")})
	require.NoError(t, err)
	// 5 x 1.00 minus 1.00 at 10% -> net 4.00, tax 0.40
	_, err = sale.AddLine(11, ProductSnapshot{Reference: "B", UnitPrice: dec("1.00")}, LineInput{
		Quantity:       dec("5"),
		DiscountAmount: decPtr("1.00"),
		VATRate:        decPtr("10"),
	})
	require.NoError(t, err)

	totals := sale.Totals()

	assert.True(t, totals.Subtotal.Equal(dec("25.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.DiscountTotal.Equal(dec("1.00")))
	assert.True(t, totals.GrandTotal.Equal(dec("28.60")), "grand total = %s", totals.GrandTotal)

	require.Len(t, totals.TaxByRate, 2)
	assert.True(t, totals.TaxByRate[0].Rate.Equal(dec("10")), "buckets sorted ascending by rate")
	assert.True(t, totals.TaxByRate[0].Net.Equal(dec("4.00")))
	assert.True(t, totals.TaxByRate[0].Tax.Equal(dec("0.40")))
	assert.True(t, totals.TaxByRate[1].Rate.Equal(dec("21")))
	assert.True(t, totals.TaxByRate[1].Net.Equal(dec("20.00")))
	assert.True(t, totals.TaxByRate[1].Tax.Equal(dec("4.20")))
}

func TestTotalsTaxOnAggregateNet(t *testing.T) {
	// Three lines at the same rate; the bucket tax must equal the tax on the
	// summed net, and the grand total must equal the sum of line totals.
	sale := testSale(t, "21")
	for _, price := range []string{"0.33", "0.33", "0.34"} {
		_, err := sale.AddLine(10, ProductSnapshot{Reference: "A", UnitPrice: dec(price)}, LineInput{Quantity: dec("1")})
		require.NoError(t, err)
	}

	totals := sale.Totals()
	require.Len(t, totals.TaxByRate, 1)
	assert.True(t, totals.TaxByRate[0].Net.Equal(dec("1.00")))
	assert.True(t, totals.TaxByRate[0].Tax.Equal(dec("0.21")))
	assert.True(t, totals.GrandTotal.Equal(dec("1.21")))

	var lineSum decimal.Decimal
	for _, l := range sale.Lines {
		lineSum = lineSum.Add(l.Total())
	}
	assert.True(t, totals.GrandTotal.Equal(lineSum), "aggregate equals sum of line totals")
}

func TestTotalsFractionalQuantity(t *testing.T) {
	sale := testSale(t, "21")
	// 0.250 kg at 4.40/kg -> subtotal 1.10, net 1.10, tax 0.231
	_, err := sale.AddLine(10, ProductSnapshot{Reference: "A", UnitPrice: dec("4.40")}, LineInput{Quantity: dec("0.250")})
	require.NoError(t, err)

	totals := sale.Totals()
	assert.True(t, totals.Subtotal.Equal(dec("1.10")))
	assert.True(t, totals.GrandTotal.Equal(dec("1.331")), "no rounding before display: %s", totals.GrandTotal)
}

func TestLineDeductionCombinesPercentAndAmount(t *testing.T) {
	line := Line{
		Quantity:        dec("4"),
		UnitPrice:       dec("2.50"),
		DiscountPercent: dec("10"),
		DiscountAmount:  dec("0.50"),
		VATRate:         dec("21"),
	}

	assert.True(t, line.Subtotal().Equal(dec("10.00")))
	assert.True(t, line.Deduction().Equal(dec("1.50")))
	assert.True(t, line.Net().Equal(dec("8.50")))
	assert.True(t, line.Tax().Equal(dec("1.785")))
	assert.True(t, line.Total().Equal(dec("10.285")))
}
