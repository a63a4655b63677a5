package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts zap to gorm's logger interface so SQL traces land
// in the same stream, tagged with the request id when one is in ctx.
type GormLogger struct {
	log                  *zap.Logger
	level                gormlogger.LogLevel
	slowThreshold        time.Duration
	ignoreRecordNotFound bool
	logSQL               bool
}

// GormLoggerOption customizes a GormLogger.
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration past which a query logs as slow.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(g *GormLogger) { g.slowThreshold = threshold }
}

// WithIgnoreRecordNotFound drops gorm.ErrRecordNotFound from the error
// log; callers treat it as a domain condition, not a failure.
func WithIgnoreRecordNotFound(ignore bool) GormLoggerOption {
	return func(g *GormLogger) { g.ignoreRecordNotFound = ignore }
}

// WithLogSQL includes full SQL text in trace entries. Leave off in
// production; statements can carry customer data.
func WithLogSQL(logSQL bool) GormLoggerOption {
	return func(g *GormLogger) { g.logSQL = logSQL }
}

// NewGormLogger builds a GormLogger at the given gorm level.
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	g := &GormLogger{
		log:                  log,
		level:                level,
		slowThreshold:        200 * time.Millisecond,
		ignoreRecordNotFound: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LogMode returns a copy at the new level, per the gorm contract.
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface.
func (g *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.contextual(ctx).Sugar().Infof(msg, args...)
	}
}

// Warn implements gormlogger.Interface.
func (g *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.contextual(ctx).Sugar().Warnf(msg, args...)
	}
}

// Error implements gormlogger.Interface.
func (g *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.contextual(ctx).Sugar().Errorf(msg, args...)
	}
}

// Trace logs a completed query. Errors log at error level, slow
// queries at warn, the rest at debug when the level allows.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	if g.logSQL {
		fields = append(fields, zap.String("sql", sql))
	}

	log := g.contextual(ctx)

	switch {
	case err != nil && g.level >= gormlogger.Error &&
		!(g.ignoreRecordNotFound && errors.Is(err, gorm.ErrRecordNotFound)):
		log.Error("sql error", append(fields, zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		log.Warn("slow sql", append(fields, zap.Duration("threshold", g.slowThreshold))...)
	case g.level >= gormlogger.Info:
		log.Debug("sql trace", fields...)
	}
}

func (g *GormLogger) contextual(ctx context.Context) *zap.Logger {
	log := g.log
	if requestID := GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	return log
}

// MapGormLogLevel converts a config string to gorm's log level. Unknown
// values map to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
