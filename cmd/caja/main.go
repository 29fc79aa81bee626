package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/caja/internal/clock"
	"github.com/smallbiznis/caja/internal/config"
	"github.com/smallbiznis/caja/internal/logger"
	"github.com/smallbiznis/caja/internal/migration"
	"github.com/smallbiznis/caja/internal/observability/metrics"
	"github.com/smallbiznis/caja/internal/printer"
	"github.com/smallbiznis/caja/internal/server"
	"github.com/smallbiznis/caja/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		printer.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
