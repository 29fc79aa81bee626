package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the register counters exposed on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	SalesCharged    prometheus.Counter
	TicketsPrinted  prometheus.Counter
	PrintFailures   prometheus.Counter
	ImportedRows    prometheus.Counter
	RejectedRows    prometheus.Counter
	RegisterOpen    prometheus.Gauge
	ChargedAmount   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		SalesCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caja_sales_charged_total",
			Help: "Sales charged against the open register session.",
		}),
		TicketsPrinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caja_tickets_printed_total",
			Help: "Tickets submitted to the print transport.",
		}),
		PrintFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caja_print_failures_total",
			Help: "Ticket submissions reported as failed by the transport.",
		}),
		ImportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caja_import_rows_total",
			Help: "Catalog CSV rows imported.",
		}),
		RejectedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caja_import_rejected_rows_total",
			Help: "Catalog CSV rows rejected during import.",
		}),
		RegisterOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "caja_register_open",
			Help: "1 while a register session is open.",
		}),
		ChargedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caja_charged_amount_total",
			Help: "Accumulated gross amount charged, in currency units.",
		}),
	}

	reg.MustRegister(
		m.SalesCharged,
		m.TicketsPrinted,
		m.PrintFailures,
		m.ImportedRows,
		m.RejectedRows,
		m.RegisterOpen,
		m.ChargedAmount,
	)

	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
