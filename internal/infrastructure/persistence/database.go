// Package persistence stores report archive metadata with GORM.
package persistence

import (
	"fmt"
	"time"

	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/jass/bff/internal/infrastructure/migration"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection
type Database struct {
	DB     *gorm.DB
	driver string
	dsn    string
}

// NewDatabase opens the archive database selected by cfg.Driver
func NewDatabase(cfg *config.ArchiveConfig, log gormlogger.Interface) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", cfg.Driver)
	}

	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 log,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}
	return &Database{DB: db, driver: driver, dsn: cfg.DSN()}, nil
}

// Migrator returns the schema migrator of the archive database. The caller
// closes it.
func (d *Database) Migrator(log *zap.Logger) (*migration.Migrator, error) {
	if d.driver == "sqlite" {
		sqlDB, err := d.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		return migration.NewSQLite(sqlDB, log)
	}
	return migration.NewFromURL(d.dsn, log)
}

// Migrate applies the pending archive migrations
func (d *Database) Migrate(log *zap.Logger) error {
	m, err := d.Migrator(log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && log != nil {
			log.Warn("Failed to close archive migrator", zap.Error(cerr))
		}
	}()
	return m.Up()
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
