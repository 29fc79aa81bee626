package export

import (
	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
)

// Basis selects which amount the export reports per reference.
type Basis string

const (
	// BasisGross sums tax-inclusive line totals, matching ticket grand totals.
	BasisGross Basis = "gross"
	// BasisNet sums pre-tax line nets.
	BasisNet Basis = "net"
)

func ParseBasis(raw string) Basis {
	if raw == string(BasisNet) {
		return BasisNet
	}
	return BasisGross
}

// Row is one exported reference: how many units were sold across the session
// and the amount they brought in.
type Row struct {
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	UnitsSold   decimal.Decimal `json:"units_sold"`
	AmountSold  decimal.Decimal `json:"amount_sold"`
}

// BuildRows groups every line of every charged sale by product reference,
// ordered by first appearance. Deterministic and idempotent: the same sales
// always yield the same rows.
func BuildRows(sales []saledomain.Sale, basis Basis) []Row {
	var (
		rows  []Row
		index = make(map[string]int)
	)

	for _, s := range sales {
		for _, line := range s.Lines {
			i, ok := index[line.Reference]
			if !ok {
				i = len(rows)
				index[line.Reference] = i
				rows = append(rows, Row{
					Reference:   line.Reference,
					Description: line.Description,
					UnitsSold:   decimal.Zero,
					AmountSold:  decimal.Zero,
				})
			}

			amount := line.Total()
			if basis == BasisNet {
				amount = line.Net()
			}

			rows[i].UnitsSold = rows[i].UnitsSold.Add(line.Quantity)
			rows[i].AmountSold = rows[i].AmountSold.Add(amount)
		}
	}

	return rows
}

// RenderCSV returns the logical export cells, header row included. Amounts
// are rounded to currency precision here, at the edge. Writing the actual
// file (delimiter, encoding) stays with the caller.
func RenderCSV(rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, []string{"referencia", "descripcion", "unidades", "importe"})
	for _, r := range rows {
		out = append(out, []string{
			r.Reference,
			r.Description,
			r.UnitsSold.String(),
			r.AmountSold.StringFixed(2),
		})
	}
	return out
}
