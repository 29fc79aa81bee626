package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// PrinterMode selects the ticket transport: "lpr", "spool" or "none".
	PrinterMode string
	PrinterName string
	SpoolDir    string

	// ExportBasis controls whether export amounts are tax-inclusive
	// ("gross", default) or pre-tax ("net").
	ExportBasis string
}

// Module wires configuration loading.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewTemplateHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "caja"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DBType:      getenv("DATABASE_TYPE", "sqlite"),
		DBHost:      getenv("DATABASE_HOST", "localhost"),
		DBPort:      getenv("DATABASE_PORT", "5432"),
		DBName:      getenv("DATABASE_NAME", "caja"),
		DBUser:      getenv("DATABASE_USER", "caja"),
		DBPassword:  getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:   getenv("DATABASE_SSLMODE", "disable"),
		PrinterMode: normalizePrinterMode(getenv("PRINTER_MODE", "spool")),
		PrinterName: strings.TrimSpace(getenv("PRINTER_NAME", "")),
		SpoolDir:    getenv("SPOOL_DIR", "tickets"),
		ExportBasis: normalizeBasis(getenv("EXPORT_BASIS", "gross")),
	}
}

const (
	PrinterModeLPR   = "lpr"
	PrinterModeSpool = "spool"
	PrinterModeNone  = "none"
)

func normalizePrinterMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case PrinterModeLPR:
		return PrinterModeLPR
	case PrinterModeNone:
		return PrinterModeNone
	default:
		return PrinterModeSpool
	}
}

func normalizeBasis(raw string) string {
	if strings.ToLower(strings.TrimSpace(raw)) == "net" {
		return "net"
	}
	return "gross"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
