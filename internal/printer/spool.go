package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// spoolTransport writes tickets into a directory instead of printing,
// the fallback when no printer is configured.
type spoolTransport struct {
	dir string
	log *zap.Logger
}

func NewSpool(dir string, log *zap.Logger) Transport {
	return &spoolTransport{
		dir: dir,
		log: log.Named("printer.spool"),
	}
}

func (t *spoolTransport) Submit(ctx context.Context, ticket string, printerName string) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("spool dir %q: %w", t.dir, err)
	}

	name := fmt.Sprintf("ticket_%s.txt", time.Now().UTC().Format("20060102_150405.000000000"))
	path := filepath.Join(t.dir, name)
	if err := os.WriteFile(path, []byte(ticket), 0o644); err != nil {
		return fmt.Errorf("write ticket %q: %w", path, err)
	}

	t.log.Info("ticket spooled", zap.String("path", path))
	return nil
}
