package cliapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"lds-graphql-eval/internal/config"
	"lds-graphql-eval/internal/logging"
	"lds-graphql-eval/internal/objectinfo"
	"lds-graphql-eval/internal/observability"
	"lds-graphql-eval/internal/planner"
	"lds-graphql-eval/internal/sqlgen"
	"lds-graphql-eval/internal/store"
)

// InitLogger builds the process logger and installs it as the slog default.
// The returned closer releases the mirror log file and is nil without one.
func InitLogger(cfg *config.Config) (*logging.Logger, io.Closer, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}

	var closer io.Closer
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		loggerCfg.Mirror = f
		closer = f
	}

	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)
	return logger, closer, nil
}

func initMetrics(cfg *config.Config, logger *logging.Logger, version string) (*observability.MeterProvider, *observability.CompileMetrics, error) {
	if cfg.Metrics.Textfile == "" {
		return nil, nil, nil
	}

	meterProvider, err := observability.InitMeterProvider(observability.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.InitCompileMetrics(meterProvider.Meter())
	if err != nil {
		_ = meterProvider.Shutdown(context.Background(), logger.Logger)
		return nil, nil, err
	}

	logger.Debug("metrics initialized", slog.String("textfile", cfg.Metrics.Textfile))
	return meterProvider, metrics, nil
}

func initTracing(ctx context.Context, cfg *config.Config, logger *logging.Logger, version string) (*observability.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, nil
	}

	logger.Debug("initializing OpenTelemetry tracing",
		slog.String("service_name", cfg.Tracing.ServiceName),
		slog.String("otlp_endpoint", cfg.Tracing.Endpoint),
		slog.Bool("insecure", cfg.Tracing.Insecure),
	)

	return observability.InitTracerProvider(ctx, observability.Config{
		ServiceName:      cfg.Tracing.ServiceName,
		ServiceVersion:   version,
		TraceSampleRatio: cfg.Tracing.SampleRatio,
		OTLPConfig: observability.OTLPExporterConfig{
			Endpoint: cfg.Tracing.Endpoint,
			Insecure: cfg.Tracing.Insecure,
			Timeout:  cfg.Tracing.Timeout,
		},
	})
}

// openInput opens a file setting. config.StdinPath selects stdin, which is
// refused when it is an interactive terminal.
func openInput(path string, opts Options) (io.ReadCloser, error) {
	if path != config.StdinPath {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	if opts.StdinIsTerminal {
		return nil, fmt.Errorf("refusing to read from an interactive terminal; pipe input or name a file")
	}
	if opts.Stdin == nil {
		return nil, fmt.Errorf("stdin is not available")
	}
	return io.NopCloser(opts.Stdin), nil
}

func loadObjectInfo(cfg *config.Config, opts Options, logger *logging.Logger) (objectinfo.Map, error) {
	path := cfg.Compiler.ObjectInfoFile

	var (
		infos objectinfo.Map
		err   error
	)
	if path == config.StdinPath {
		var r io.ReadCloser
		r, err = openInput(path, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to read object info: %w", err)
		}
		infos, err = objectinfo.Decode(r, "json")
		_ = r.Close()
	} else {
		infos, err = objectinfo.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}

	for _, problem := range infos.Validate() {
		logger.Warn("object info problem", slog.String("problem", problem))
	}
	logger.Debug("object info loaded", slog.String("path", path), slog.Int("types", len(infos)))
	return infos, nil
}

func storeMapping(cfg *config.Config) sqlgen.Mapping {
	return sqlgen.Mapping{
		JSONTable:  cfg.Store.JSONTable,
		JSONColumn: cfg.Store.JSONColumn,
		KeyColumn:  cfg.Store.KeyColumn,
		KeyPrefix:  cfg.Store.KeyPrefix,
	}
}

func openStore(ctx context.Context, cfg *config.Config, opts Options, logger *logging.Logger, metrics bool) (*store.Store, error) {
	if !cfg.Store.Execute {
		return nil, nil
	}

	st, err := store.Open(ctx, store.Options{
		Path:    cfg.Store.Path,
		Mapping: storeMapping(cfg),
		Metrics: metrics,
		Logger:  logger.Logger,
	})
	if err != nil {
		return nil, err
	}

	for _, path := range cfg.Store.RecordsFiles {
		entries, err := readRecords(path, opts)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		n, err := st.PutRecords(ctx, entries)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to load records from %s: %w", path, err)
		}
		logger.Debug("records loaded", slog.String("path", path), slog.Int("count", n))
	}
	return st, nil
}

func readRecords(path string, opts Options) ([]store.Entry, error) {
	if path != config.StdinPath {
		return store.LoadRecordsFile(path)
	}
	r, err := openInput(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	defer r.Close()
	return store.DecodeRecords(r, "json")
}

func buildPlanLimits(cfg *config.Config) *planner.PlanLimits {
	if cfg.Compiler.MaxDepth > 0 || cfg.Compiler.MaxConnections > 0 || cfg.Compiler.MaxJoins > 0 {
		return &planner.PlanLimits{
			MaxDepth:       cfg.Compiler.MaxDepth,
			MaxConnections: cfg.Compiler.MaxConnections,
			MaxJoins:       cfg.Compiler.MaxJoins,
		}
	}
	return nil
}
