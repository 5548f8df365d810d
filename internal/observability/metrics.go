package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Compile outcomes.
const (
	OutcomeOK = "ok"
	// OutcomeInvalid marks a query rejected with compile errors.
	OutcomeInvalid = "invalid"
	// OutcomeError marks an infrastructure failure such as I/O or SQL errors.
	OutcomeError = "error"
)

// Pipeline stages.
const (
	StageParse    = "parse"
	StagePlan     = "plan"
	StageGenerate = "generate"
	StageExecute  = "execute"
)

// CompileMetrics holds metrics for query compilation and execution.
type CompileMetrics struct {
	compileDuration metric.Float64Histogram
	compileCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	stageDuration   metric.Float64Histogram
	connections     metric.Int64Histogram
	queryDepth      metric.Int64Histogram
	joins           metric.Int64Histogram
	bindings        metric.Int64Histogram
	statementSize   metric.Int64Histogram
}

// InitCompileMetrics creates compile metrics on meter, or on the global meter
// provider when meter is nil.
func InitCompileMetrics(meter metric.Meter) (*CompileMetrics, error) {
	if meter == nil {
		meter = otel.Meter("ldsgql")
	}

	compileDuration, err := meter.Float64Histogram(
		"ldsgql.compile.duration",
		metric.WithDescription("Duration of query compilations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compile duration histogram: %w", err)
	}

	compileCounter, err := meter.Int64Counter(
		"ldsgql.compile.requests",
		metric.WithDescription("Total number of query compilations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compile counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"ldsgql.compile.errors",
		metric.WithDescription("Total number of compile error messages reported"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compile error counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram(
		"ldsgql.stage.duration",
		metric.WithDescription("Duration of individual pipeline stages in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	connections, err := meter.Int64Histogram(
		"ldsgql.query.connections",
		metric.WithDescription("Number of connections in a compiled query, nested ones included"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connections histogram: %w", err)
	}

	queryDepth, err := meter.Int64Histogram(
		"ldsgql.query.depth",
		metric.WithDescription("Child connection nesting depth of compiled queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query depth histogram: %w", err)
	}

	joins, err := meter.Int64Histogram(
		"ldsgql.query.joins",
		metric.WithDescription("Largest join count of any connection in a compiled query"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create joins histogram: %w", err)
	}

	bindings, err := meter.Int64Histogram(
		"ldsgql.sql.bindings",
		metric.WithDescription("Number of bound parameters in generated statements"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bindings histogram: %w", err)
	}

	statementSize, err := meter.Int64Histogram(
		"ldsgql.sql.size",
		metric.WithDescription("Size of generated statements in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create statement size histogram: %w", err)
	}

	return &CompileMetrics{
		compileDuration: compileDuration,
		compileCounter:  compileCounter,
		errorCounter:    errorCounter,
		stageDuration:   stageDuration,
		connections:     connections,
		queryDepth:      queryDepth,
		joins:           joins,
		bindings:        bindings,
		statementSize:   statementSize,
	}, nil
}

// RecordCompile records one compilation with its duration and outcome.
// errorCount is the number of compile error messages returned.
func (m *CompileMetrics) RecordCompile(ctx context.Context, duration time.Duration, outcome string, errorCount int) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.compileDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.compileCounter.Add(ctx, 1, attrs)
	if errorCount > 0 {
		m.errorCounter.Add(ctx, int64(errorCount))
	}
}

// RecordStage records the duration of one pipeline stage.
func (m *CompileMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	m.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordPlan records the shape of a compiled query.
func (m *CompileMetrics) RecordPlan(ctx context.Context, connections, depth, joins int) {
	m.connections.Record(ctx, int64(connections))
	m.queryDepth.Record(ctx, int64(depth))
	m.joins.Record(ctx, int64(joins))
}

// RecordStatement records the size of a generated statement.
func (m *CompileMetrics) RecordStatement(ctx context.Context, sqlBytes, bindings int) {
	m.statementSize.Record(ctx, int64(sqlBytes))
	m.bindings.Record(ctx, int64(bindings))
}
