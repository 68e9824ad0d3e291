package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"powereye/internal/model"
)

// SlowQueryThreshold is the duration above which a statement is logged.
const SlowQueryThreshold = 500 * time.Millisecond

// Config returns the GORM settings shared by every dialect. Each statement
// runs in its own implicit transaction and driver errors are translated so
// unique-key violations surface as gorm.ErrDuplicatedKey. A nil logger
// silences GORM.
func Config(l *slog.Logger) *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 NewLogger(l),
	}
}

// NewLogger routes GORM's warnings, failed statements and slow queries into
// l as WARN records. Lookups that find no row are expected and not logged.
func NewLogger(l *slog.Logger) logger.Interface {
	if l == nil {
		return logger.Discard
	}
	return logger.New(
		slog.NewLogLogger(l.With(slog.String("component", "gorm")).Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             SlowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string, l *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), Config(l))
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Models lists the tables in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Machine{},
		&model.Alert{},
	}
}

// Migrate creates or updates the schema. With reset set, existing tables
// are dropped first.
func Migrate(db *gorm.DB, reset bool) error {
	models := Models()
	if reset {
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
