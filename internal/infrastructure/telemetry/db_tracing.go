package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ArchiveTracingConfig controls spans around report archive queries.
type ArchiveTracingConfig struct {
	Enabled            bool
	DBName             string
	SlowQueryThreshold time.Duration
	// WithQueryVariables keeps bound values in db.statement. Archive rows carry
	// organization ids and titles, so this stays off outside development.
	WithQueryVariables bool
}

// ArchiveTracer installs otelgorm on the archive database and flags slow
// statements on the span otelgorm opens.
type ArchiveTracer struct {
	config ArchiveTracingConfig
	logger *zap.Logger
}

// NewArchiveTracer creates an ArchiveTracer.
func NewArchiveTracer(cfg ArchiveTracingConfig, logger *zap.Logger) *ArchiveTracer {
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveTracer{config: cfg, logger: logger}
}

type gormHook interface {
	Register(name string, fn func(*gorm.DB)) error
}

// Register attaches the tracing plugin. Extra otelgorm options are appended
// after the configured ones.
func (t *ArchiveTracer) Register(db *gorm.DB, extra ...otelgorm.Option) error {
	if !t.config.Enabled {
		t.logger.Debug("Archive query tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(t.config.DBName)}
	if !t.config.WithQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	opts = append(opts, extra...)

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	hooks := []struct {
		hook gormHook
		name string
		fn   func(*gorm.DB)
	}{
		{cb.Create().Before("gorm:create"), "archive_timing:before_create", t.markStart},
		{cb.Query().Before("gorm:query"), "archive_timing:before_query", t.markStart},
		{cb.Row().Before("gorm:row"), "archive_timing:before_row", t.markStart},
		{cb.Raw().Before("gorm:raw"), "archive_timing:before_raw", t.markStart},
		{cb.Create().After("gorm:create").Before("otel:after:create"), "archive_timing:after_create", t.annotate},
		{cb.Query().After("gorm:query").Before("otel:after:query"), "archive_timing:after_query", t.annotate},
		{cb.Row().After("gorm:row").Before("otel:after:row"), "archive_timing:after_row", t.annotate},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), "archive_timing:after_raw", t.annotate},
	}
	for _, h := range hooks {
		if err := h.hook.Register(h.name, h.fn); err != nil {
			return err
		}
	}

	t.logger.Info("Archive query tracing enabled",
		zap.String("db_name", t.config.DBName),
		zap.Duration("slow_query_threshold", t.config.SlowQueryThreshold),
		zap.Bool("with_query_variables", t.config.WithQueryVariables),
	)
	return nil
}

type queryStartKey struct{}

func (t *ArchiveTracer) markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *ArchiveTracer) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > t.config.SlowQueryThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		t.logger.Warn("Slow archive query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}
