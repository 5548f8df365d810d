// Package evaluator runs the compile pipeline: request analysis, planning into
// the intermediate representation, and SQL generation. Each stage is traced,
// timed and logged; Evaluate additionally runs the statement on a store.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/graphql-go/graphql/language/ast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lds-graphql-eval/internal/gqlrequest"
	"lds-graphql-eval/internal/ir"
	"lds-graphql-eval/internal/logging"
	"lds-graphql-eval/internal/objectinfo"
	"lds-graphql-eval/internal/observability"
	"lds-graphql-eval/internal/planner"
	"lds-graphql-eval/internal/sqlgen"
)

// Executor runs a compiled statement and returns the result document.
type Executor interface {
	Execute(ctx context.Context, res *sqlgen.Result) (json.RawMessage, error)
}

// Evaluator compiles GraphQL record queries against one object info map.
type Evaluator struct {
	infos    objectinfo.Map
	mapping  sqlgen.Mapping
	viewerID string
	limits   *planner.PlanLimits
	metrics  *observability.CompileMetrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMapping sets the key/value table layout statements are generated for.
func WithMapping(mapping sqlgen.Mapping) Option {
	return func(e *Evaluator) {
		e.mapping = mapping
	}
}

// WithViewerID sets the user id the MINE and ASSIGNEDTOME scopes compare against.
func WithViewerID(id string) Option {
	return func(e *Evaluator) {
		e.viewerID = id
	}
}

// WithLimits bounds the shape of compiled queries.
func WithLimits(limits planner.PlanLimits) Option {
	return func(e *Evaluator) {
		e.limits = &limits
	}
}

// WithMetrics records compile metrics.
func WithMetrics(metrics *observability.CompileMetrics) Option {
	return func(e *Evaluator) {
		e.metrics = metrics
	}
}

// WithLogger sets the logger. Without one, the logger carried by the context
// is used.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Evaluator) {
		e.tracer = tracer
	}
}

// New creates an Evaluator for infos.
func New(infos objectinfo.Map, opts ...Option) (*Evaluator, error) {
	if len(infos) == 0 {
		return nil, errors.New("object info map is empty")
	}
	e := &Evaluator{
		infos:   infos,
		mapping: sqlgen.DefaultMapping(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("lds-graphql-eval/evaluator")
	}
	return e, nil
}

// Compilation is the output of one successful compile.
type Compilation struct {
	Analysis *gqlrequest.Analysis
	Root     *ir.RootQuery
	Cost     planner.PlanCost
	Result   *sqlgen.Result
}

// Compile reads a request from r and compiles the selected operation.
// Validation failures are returned as planner.Errors.
func (e *Evaluator) Compile(ctx context.Context, r io.Reader, operationName string) (*Compilation, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "ldsgql.compile")
	defer span.End()

	comp, outcome, err := e.compile(ctx, span, r, operationName)
	e.finish(ctx, span, start, outcome, err)
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// CompileDocument compiles every operation in doc.
func (e *Evaluator) CompileDocument(ctx context.Context, doc *ast.Document) (*Compilation, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "ldsgql.compile")
	defer span.End()

	comp, outcome, err := e.plan(ctx, doc)
	e.finish(ctx, span, start, outcome, err)
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// Evaluate compiles the request read from r and runs it on exec.
func (e *Evaluator) Evaluate(ctx context.Context, exec Executor, r io.Reader, operationName string) (json.RawMessage, *Compilation, error) {
	comp, err := e.Compile(ctx, r, operationName)
	if err != nil {
		return nil, nil, err
	}

	ctx, span := e.tracer.Start(ctx, "ldsgql.execute")
	defer span.End()
	stageStart := time.Now()
	out, err := exec.Execute(ctx, comp.Result)
	e.stageDone(ctx, observability.StageExecute, stageStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log(ctx).Error("statement execution failed", slog.String("error", err.Error()))
		return nil, comp, err
	}
	span.SetAttributes(attribute.Int("ldsgql.result.size_bytes", len(out)))
	return out, comp, nil
}

func (e *Evaluator) compile(ctx context.Context, span trace.Span, r io.Reader, operationName string) (*Compilation, string, error) {
	stageStart := time.Now()
	_, parseSpan := e.tracer.Start(ctx, "ldsgql.parse")
	analysis := gqlrequest.Analyze(r, operationName)
	parseSpan.End()
	e.stageDone(ctx, observability.StageParse, stageStart)

	span.SetAttributes(observability.RequestSpanAttributes(analysis)...)
	e.log(ctx).Debug("request analyzed", observability.RequestLogFields(ctx, analysis)...)

	if err := analysis.Err(); err != nil {
		outcome := observability.OutcomeInvalid
		if analysis.DecodeError != nil {
			outcome = observability.OutcomeError
		}
		return nil, outcome, err
	}

	comp, outcome, err := e.plan(ctx, analysis.OperationDocument())
	if comp != nil {
		comp.Analysis = analysis
	}
	return comp, outcome, err
}

func (e *Evaluator) plan(ctx context.Context, doc *ast.Document) (*Compilation, string, error) {
	planOpts := []planner.PlanOption{planner.WithUserID(e.viewerID)}
	if e.limits != nil {
		planOpts = append(planOpts, planner.WithLimits(*e.limits))
	}

	stageStart := time.Now()
	_, planSpan := e.tracer.Start(ctx, "ldsgql.plan")
	root, err := planner.Transform(doc, e.infos, planOpts...)
	planSpan.End()
	e.stageDone(ctx, observability.StagePlan, stageStart)
	if err != nil {
		var compileErrs planner.Errors
		if errors.As(err, &compileErrs) {
			return nil, observability.OutcomeInvalid, err
		}
		return nil, observability.OutcomeError, err
	}

	cost := planner.EstimateCost(*root)
	if e.metrics != nil {
		e.metrics.RecordPlan(ctx, cost.Connections, cost.Depth, cost.Joins)
	}

	stageStart = time.Now()
	_, genSpan := e.tracer.Start(ctx, "ldsgql.generate")
	result, err := sqlgen.Generate(*root, e.mapping)
	genSpan.End()
	e.stageDone(ctx, observability.StageGenerate, stageStart)
	if err != nil {
		return nil, observability.OutcomeError, fmt.Errorf("failed to generate SQL: %w", err)
	}
	if e.metrics != nil {
		e.metrics.RecordStatement(ctx, len(result.SQL), len(result.Bindings))
	}

	e.log(ctx).Debug("query compiled",
		slog.Int("connections", cost.Connections),
		slog.Int("depth", cost.Depth),
		slog.Int("joins", cost.Joins),
		slog.Int("bindings", len(result.Bindings)),
	)
	return &Compilation{Root: root, Cost: cost, Result: result}, observability.OutcomeOK, nil
}

func (e *Evaluator) finish(ctx context.Context, span trace.Span, start time.Time, outcome string, err error) {
	messages := planner.Messages(err)
	span.SetAttributes(attribute.String("ldsgql.compile.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log(ctx).Warn("compile failed",
			slog.String("outcome", outcome),
			slog.Int("error_count", len(messages)),
			slog.String("error", err.Error()),
		)
	}
	if e.metrics != nil {
		errorCount := 0
		if outcome == observability.OutcomeInvalid {
			errorCount = len(messages)
		}
		e.metrics.RecordCompile(ctx, time.Since(start), outcome, errorCount)
	}
}

func (e *Evaluator) stageDone(ctx context.Context, stage string, start time.Time) {
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordStage(ctx, stage, elapsed)
	}
	e.log(ctx).Debug("stage finished", slog.String("stage", stage), slog.Duration("duration", elapsed))
}

func (e *Evaluator) log(ctx context.Context) *logging.Logger {
	if e.logger == nil {
		return logging.FromContext(ctx)
	}
	if id := logging.GetRequestID(ctx); id != "" {
		return e.logger.WithRequestID(id)
	}
	return e.logger
}
