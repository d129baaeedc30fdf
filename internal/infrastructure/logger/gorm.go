package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogger routes GORM output through zap. Statements carry the request
// and the acting user so a ledger write can be traced back to who made it.
type SQLLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewSQLLogger builds a GORM logger from the application log level.
// A zero slow threshold disables slow query warnings.
func NewSQLLogger(log *zap.Logger, appLevel string, slow time.Duration) *SQLLogger {
	return &SQLLogger{
		log:   log.Named("sql"),
		level: sqlLevel(appLevel),
		slow:  slow,
	}
}

// sqlLevel maps the application log level; statements are traced only at debug.
func sqlLevel(appLevel string) gormlogger.LogLevel {
	switch appLevel {
	case "silent":
		return gormlogger.Silent
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	}
	return gormlogger.Warn
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *SQLLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, args...)
	}
}

func (l *SQLLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, args...)
	}
}

func (l *SQLLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, args...)
	}
}

// Trace logs failed statements, statements over the slow threshold and,
// at debug, every statement. Not-found is a normal repository outcome.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow

	var msg string
	var write func(string, ...zap.Field)
	switch {
	case failed && l.level >= gormlogger.Error:
		msg, write = "sql failed", l.log.Error
	case slow && l.level >= gormlogger.Warn:
		msg, write = "slow sql", l.log.Warn
	case l.level >= gormlogger.Info:
		msg, write = "sql", l.log.Debug
	default:
		return
	}

	stmt, rows := fc()
	fields := append(contextFields(ctx),
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	if slow {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	if failed {
		fields = append(fields, zap.Error(err))
	}
	write(msg, fields...)
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, kv := range [][2]string{
		{"request_id", GetRequestID(ctx)},
		{"trace_id", GetTraceID(ctx)},
		{"user_id", GetUserID(ctx)},
	} {
		if kv[1] != "" {
			fields = append(fields, zap.String(kv[0], kv[1]))
		}
	}
	return fields
}
