package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const slowQueryStartKey = "telemetry:query_start"

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bind variables in spans; never in production
	SlowQueryThresh time.Duration // default 200ms
	DBName          string
}

// RegisterDBTracing installs otelgorm spans and a slow query log on db.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "procurement"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	start := func(tx *gorm.DB) { tx.InstanceSet(slowQueryStartKey, time.Now()) }
	finish := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(slowQueryStartKey)
		if !ok {
			return
		}
		elapsed := time.Since(v.(time.Time))
		if elapsed < cfg.SlowQueryThresh {
			return
		}
		logger.Warn("Slow query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", tx.Statement.RowsAffected),
			zap.String("trace_id", GetTraceID(tx.Statement.Context)))
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register("telemetry:before_create", start); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("telemetry:after_create", finish); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("telemetry:before_query", start); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("telemetry:after_query", finish); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("telemetry:before_update", start); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("telemetry:after_update", finish); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", start); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("telemetry:after_delete", finish); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", start); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("telemetry:after_raw", finish); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}
