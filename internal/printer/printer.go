package printer

import (
	"context"

	"github.com/smallbiznis/caja/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Transport submits a rendered ticket to a printer. Submission is
// fire-and-forget from the register's point of view: the outcome is
// reported, never retried here.
type Transport interface {
	Submit(ctx context.Context, ticket string, printerName string) error
}

// NewTransport selects the configured transport.
func NewTransport(cfg config.Config, log *zap.Logger) Transport {
	switch cfg.PrinterMode {
	case config.PrinterModeLPR:
		return NewLPR(cfg.PrinterName, log)
	case config.PrinterModeNone:
		return NewNull()
	default:
		return NewSpool(cfg.SpoolDir, log)
	}
}

// --- Null transport (no-op, used when printing is disabled) ---

type nullTransport struct{}

func NewNull() Transport {
	return nullTransport{}
}

func (nullTransport) Submit(ctx context.Context, ticket string, printerName string) error {
	return nil
}

var Module = fx.Module("printer",
	fx.Provide(NewTransport),
)
