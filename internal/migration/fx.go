package migration

import (
	"github.com/smallbiznis/fareway/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			log.Warn("skipping schema migrations for non-postgres dialect",
				zap.String("dialect", conn.Dialector.Name()))
		}

		return seed.EnsureReferenceData(conn)
	}),
)
