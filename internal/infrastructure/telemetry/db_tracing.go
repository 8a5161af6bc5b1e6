package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing configuration
type DBTracingConfig struct {
	Enabled          bool
	LogFullSQL       bool // include full SQL in spans; dev only
	SlowQueryThresh  time.Duration
	DBSystem         string
	WithoutVariables bool // keep bind parameters out of span attributes
}

// DefaultDBTracingConfig returns the tracing defaults: disabled, no SQL
// text, no bind parameters
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin wires otelgorm into a GORM handle and layers slow-query
// and error annotations on top of the spans otelgorm opens
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs otelgorm plus the timing callbacks on db.
// A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerCallbacks hooks every GORM operation: a before callback stamps
// the start time into the statement context, an after callback annotates
// the active span
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	regs := []func() error{
		func() error {
			return cb.Create().Before("gorm:create").Register("otel_timing:before_create", p.beforeCallback)
		},
		func() error {
			return cb.Create().After("gorm:create").Register("otel_timing:after_create", p.afterCallback)
		},
		func() error {
			return cb.Query().Before("gorm:query").Register("otel_timing:before_query", p.beforeCallback)
		},
		func() error {
			return cb.Query().After("gorm:query").Register("otel_timing:after_query", p.afterCallback)
		},
		func() error {
			return cb.Update().Before("gorm:update").Register("otel_timing:before_update", p.beforeCallback)
		},
		func() error {
			return cb.Update().After("gorm:update").Register("otel_timing:after_update", p.afterCallback)
		},
		func() error {
			return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", p.beforeCallback)
		},
		func() error {
			return cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", p.afterCallback)
		},
		func() error {
			return cb.Row().Before("gorm:row").Register("otel_timing:before_row", p.beforeCallback)
		},
		func() error {
			return cb.Row().After("gorm:row").Register("otel_timing:after_row", p.afterCallback)
		},
		func() error {
			return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", p.beforeCallback)
		},
		func() error {
			return cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", p.afterCallback)
		},
	}

	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}

func (p *DBTracingPlugin) beforeCallback(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = WithQueryStartTime(db.Statement.Context)
	}
}

// afterCallback annotates the span otelgorm opened with row counts, the
// table name, errors, and a slow-query event when the threshold is crossed.
// gorm.ErrRecordNotFound is an expected outcome and does not fail the span.
func (p *DBTracingPlugin) afterCallback(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps the current time into ctx for the slow-query
// check in the after callback
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
