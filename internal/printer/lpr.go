package printer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// lprTransport pipes the ticket text into lpr, the way thermal printers are
// usually driven on CUPS hosts.
type lprTransport struct {
	defaultPrinter string
	log            *zap.Logger
}

func NewLPR(defaultPrinter string, log *zap.Logger) Transport {
	return &lprTransport{
		defaultPrinter: defaultPrinter,
		log:            log.Named("printer.lpr"),
	}
}

func (t *lprTransport) Submit(ctx context.Context, ticket string, printerName string) error {
	name := strings.TrimSpace(printerName)
	if name == "" {
		name = t.defaultPrinter
	}

	args := []string{}
	if name != "" {
		args = append(args, "-P", name)
	}

	cmd := exec.CommandContext(ctx, "lpr", args...)
	cmd.Stdin = strings.NewReader(ticket)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.log.Warn("lpr submission failed",
			zap.String("printer", name),
			zap.String("stderr", stderr.String()),
			zap.Error(err),
		)
		return fmt.Errorf("lpr submit to %q: %w", name, err)
	}

	t.log.Info("ticket submitted", zap.String("printer", name))
	return nil
}
