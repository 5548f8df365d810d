package cliapp

import (
	"context"
	"fmt"
	"log/slog"

	"lds-graphql-eval/internal/evaluator"
)

// Init loads object info, sets up observability and opens the store when the
// run executes statements. It is idempotent.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	if a.initialized {
		a.stateMu.Unlock()
		return nil
	}
	a.stateMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	release := releaseStack{}
	success := false
	defer func() {
		if !success {
			_ = release.releaseAll(context.Background(), a.logger)
		}
	}()

	meterProvider, metrics, err := initMetrics(a.cfg, a.logger, a.opts.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if meterProvider != nil {
		textfile := a.cfg.Metrics.Textfile
		release.add("meter provider", func(shutdownCtx context.Context) error {
			if err := meterProvider.WriteTextfile(textfile); err != nil {
				a.logger.Warn("failed to export metrics", slog.String("path", textfile), slog.String("error", err.Error()))
			}
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tracerProvider, err := initTracing(ctx, a.cfg, a.logger, a.opts.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if tracerProvider != nil {
		release.add("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	infos, err := loadObjectInfo(a.cfg, a.opts, a.logger)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, a.cfg, a.opts, a.logger, meterProvider != nil)
	if err != nil {
		return err
	}
	if st != nil {
		release.add("store", func(_ context.Context) error {
			return st.Close()
		})
	}

	evalOpts := []evaluator.Option{
		evaluator.WithMapping(storeMapping(a.cfg)),
		evaluator.WithViewerID(a.cfg.Compiler.ViewerID),
		evaluator.WithLogger(a.logger),
	}
	if limits := buildPlanLimits(a.cfg); limits != nil {
		evalOpts = append(evalOpts, evaluator.WithLimits(*limits))
	}
	if metrics != nil {
		evalOpts = append(evalOpts, evaluator.WithMetrics(metrics))
	}
	eval, err := evaluator.New(infos, evalOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize evaluator: %w", err)
	}

	a.stateMu.Lock()
	a.meterProvider = meterProvider
	a.metrics = metrics
	a.tracerProvider = tracerProvider
	a.store = st
	a.evaluator = eval
	a.release = release
	a.initialized = true
	a.stateMu.Unlock()

	success = true
	return nil
}
