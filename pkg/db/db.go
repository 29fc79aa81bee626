package db

import (
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/caja/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Module provides the gorm connection.
var Module = fx.Module("db",
	fx.Provide(New),
)

// New opens the configured database.
func New(cfg config.Config) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

var testSeq atomic.Int64

// NewTest opens an isolated in-memory sqlite database. Each call gets its own
// named memory database so pooled connections share state and tests stay
// independent of each other.
func NewTest() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", testSeq.Add(1))
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
