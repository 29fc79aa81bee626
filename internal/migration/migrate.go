package migration

import (
	catalogdomain "github.com/smallbiznis/caja/internal/catalog/domain"
	registerdomain "github.com/smallbiznis/caja/internal/register/domain"
	saledomain "github.com/smallbiznis/caja/internal/sale/domain"
	ticketdomain "github.com/smallbiznis/caja/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run applies the schema before any service loads its state.
func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&catalogdomain.Product{},
		&ticketdomain.TemplateRecord{},
		&registerdomain.Session{},
		&saledomain.Sale{},
		&saledomain.Line{},
	); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	return nil
}
