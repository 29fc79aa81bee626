package export

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
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

func chargedSale(id int64, lines ...saledomain.Line) saledomain.Sale {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return saledomain.Sale{
		ID:        snowflake.ID(id),
		Status:    saledomain.StatusCharged,
		CreatedAt: now,
		ChargedAt: &now,
		Lines:     lines,
	}
}

func line(ref, desc, qty, price, rate string) saledomain.Line {
	return saledomain.Line{
		Reference:   ref,
		Description: desc,
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
		VATRate:     dec(rate),
	}
}

func TestBuildRowsGroupsByReference(t *testing.T) {
	sales := []saledomain.Sale{
		chargedSale(1,
			line("A001", "Cafe", "2", "10.00", "21"),
			line("B002", "Leche", "1", "1.10", "10"),
		),
		chargedSale(2,
			line("A001", "Cafe", "3", "10.00", "21"),
		),
	}

	rows := BuildRows(sales, BasisGross)

	require.Len(t, rows, 2)
	assert.Equal(t, "A001", rows[0].Reference, "first appearance order")
	assert.Equal(t, "B002", rows[1].Reference)
	assert.True(t, rows[0].UnitsSold.Equal(dec("5")), "units accumulate across sales")
	assert.True(t, rows[0].AmountSold.Equal(dec("60.50")), "gross = 50.00 * 1.21")
	assert.True(t, rows[1].AmountSold.Equal(dec("1.21")))
}

func TestBuildRowsNetBasis(t *testing.T) {
	sales := []saledomain.Sale{
		chargedSale(1, line("A001", "Cafe", "2", "10.00", "21")),
	}

	rows := BuildRows(sales, BasisNet)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].AmountSold.Equal(dec("20.00")), "net excludes tax")
}

func TestBuildRowsDeterministic(t *testing.T) {
	sales := []saledomain.Sale{
		chargedSale(1,
			line("C", "", "1", "1.00", "21"),
			line("A", "", "1", "2.00", "21"),
		),
		chargedSale(2, line("B", "", "1", "3.00", "21")),
	}

	first := BuildRows(sales, BasisGross)
	second := BuildRows(sales, BasisGross)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Reference, second[i].Reference)
		assert.True(t, first[i].AmountSold.Equal(second[i].AmountSold))
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	if rows := BuildRows(nil, BasisGross); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestRenderCSV(t *testing.T) {
	rows := []Row{
		{Reference: "A001", Description: "Cafe", UnitsSold: dec("5"), AmountSold: dec("60.5")},
		{Reference: "B002", Description: "Leche", UnitsSold: dec("0.250"), AmountSold: dec("1.331")},
	}

	cells := RenderCSV(rows)

	require.Len(t, cells, 3)
	assert.Equal(t, []string{"referencia", "descripcion", "unidades", "importe"}, cells[0])
	assert.Equal(t, []string{"A001", "Cafe", "5", "60.50"}, cells[1])
	assert.Equal(t, []string{"B002", "Leche", "0.25", "1.33"}, cells[2])
}

func TestParseBasis(t *testing.T) {
	assert.Equal(t, BasisNet, ParseBasis("net"))
	assert.Equal(t, BasisGross, ParseBasis("gross"))
	assert.Equal(t, BasisGross, ParseBasis(""))
	assert.Equal(t, BasisGross, ParseBasis("bogus"))
}
