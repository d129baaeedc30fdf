package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/procurement/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrSchemaNotMigrated is returned when schema_migrations holds no version
var ErrSchemaNotMigrated = errors.New("database schema has not been migrated")

// Database wraps the GORM handle shared by every repository
type Database struct {
	DB *gorm.DB
}

// NewDatabaseWithLogger opens the Postgres connection pool sized from cfg
// and verifies it with a ping.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db}, nil
}

// Close closes the connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks the connection within ctx; used by the health endpoint
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// SchemaVersion reads the version golang-migrate recorded. A dirty schema
// means a migration failed halfway and must be forced before serving.
func (d *Database) SchemaVersion(ctx context.Context) (uint, bool, error) {
	var row struct {
		Version int64
		Dirty   bool
	}
	err := d.DB.WithContext(ctx).
		Raw("SELECT version, dirty FROM schema_migrations LIMIT 1").
		Scan(&row).Error
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	if row.Version <= 0 {
		return 0, false, ErrSchemaNotMigrated
	}
	return uint(row.Version), row.Dirty, nil
}
