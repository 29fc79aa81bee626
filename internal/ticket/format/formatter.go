package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
	"github.com/smallbiznis/caja/internal/ticket/domain"
)

const timeLayout = "02/01/2006 15:04"

// FormatSaleTicket renders the printable ticket for one sale.
//
// This function is PURE:
// - No side effects
// - No I/O
// - Fully deterministic
//
// All money is rounded to currency precision here and nowhere earlier.
func FormatSaleTicket(s saledomain.Sale, tpl domain.Template, at time.Time) string {
	var b strings.Builder

	writeLine(&b, tpl.Header)
	writeLine(&b, at.Format(timeLayout))
	writeLine(&b, "")

	for _, line := range s.Lines {
		b.WriteString(fmt.Sprintf("%s x%s @ %s", line.Reference, line.Quantity.String(), money(line.UnitPrice)))
		if line.DiscountPercent.IsPositive() {
			b.WriteString(fmt.Sprintf(" (-%s%%)", line.DiscountPercent.StringFixed(2)))
		}
		if line.DiscountAmount.IsPositive() {
			b.WriteString(fmt.Sprintf(" (-%s)", money(line.DiscountAmount)))
		}
		b.WriteString(fmt.Sprintf(" = %s\n", money(line.Total())))
		if line.Description != "" {
			writeLine(&b, "  "+line.Description)
		}
	}
	writeLine(&b, "")

	totals := s.Totals()
	writeLine(&b, "Base: "+money(totals.Subtotal.Sub(totals.DiscountTotal)))
	for _, rt := range totals.TaxByRate {
		writeLine(&b, fmt.Sprintf("IVA %s%% s/ %s: %s", rate(rt.Rate), money(rt.Net), money(rt.Tax)))
	}
	writeLine(&b, "TOTAL: "+money(totals.GrandTotal))

	if tpl.Footer != "" {
		writeLine(&b, "")
		writeLine(&b, tpl.Footer)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatClosingTicket renders the register close summary: units sold per
// reference, taxable base, VAT per rate and accumulated, and the cash total.
// Pure like FormatSaleTicket.
func FormatClosingTicket(sum domain.ClosingSummary, tpl domain.Template, at time.Time) string {
	var b strings.Builder

	writeLine(&b, "*** Cierre de caja ***")
	writeLine(&b, at.Format(timeLayout))
	writeLine(&b, "")

	for _, u := range sum.Units {
		writeLine(&b, fmt.Sprintf("%s: %s uds", u.Reference, u.Units.String()))
	}
	writeLine(&b, "")

	writeLine(&b, "Base imponible: "+money(sum.TaxableBase))
	accumulated := decimal.Zero
	for _, rt := range sum.TaxByRate {
		accumulated = accumulated.Add(rt.Tax)
		writeLine(&b, fmt.Sprintf("IVA %s%% s/ %s: %s", rate(rt.Rate), money(rt.Net), money(rt.Tax)))
	}
	writeLine(&b, "IVA acumulado: "+money(accumulated))
	writeLine(&b, "Total caja: "+money(sum.CashTotal))

	if tpl.Footer != "" {
		writeLine(&b, "")
		writeLine(&b, tpl.Footer)
	}

	return strings.TrimRight(b.String(), "\n")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func rate(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func writeLine(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}
