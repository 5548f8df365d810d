// Package cliapp wires configuration, observability, the durable store and the
// evaluator together for one ldsgql run.
package cliapp

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"lds-graphql-eval/internal/config"
	"lds-graphql-eval/internal/evaluator"
	"lds-graphql-eval/internal/logging"
	"lds-graphql-eval/internal/observability"
	"lds-graphql-eval/internal/store"
)

// ErrCompileFailed is returned by Run after compile errors were written out.
var ErrCompileFailed = errors.New("query failed to compile")

// Options carry process-level inputs.
type Options struct {
	Version string
	Stdin   io.Reader
	// StdinIsTerminal marks an interactive stdin, which is never read.
	StdinIsTerminal bool
}

// App owns runtime resources for one ldsgql invocation.
type App struct {
	cfg    *config.Config
	logger *logging.Logger
	opts   Options

	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	metrics        *observability.CompileMetrics

	store     *store.Store
	evaluator *evaluator.Evaluator

	release releaseStack

	stateMu     sync.Mutex
	initialized bool

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		opts:   opts,
	}, nil
}
