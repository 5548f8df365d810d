package cliapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"lds-graphql-eval/internal/logging"
	"lds-graphql-eval/internal/planner"
)

type compileErrorOutput struct {
	Errors []compileErrorMessage `json:"errors"`
}

type compileErrorMessage struct {
	Message string `json:"message"`
}

// Run compiles the configured request and writes the result to out: the
// statement and its bindings, or the result document when executing. Compile
// errors are written as {"errors": [...]} and reported as ErrCompileFailed.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	a.stateMu.Lock()
	initialized := a.initialized
	a.stateMu.Unlock()
	if !initialized {
		return fmt.Errorf("app is not initialized")
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestIDContext(ctx, requestID)
	logger := a.logger.WithRequestID(requestID)

	r, err := openInput(a.cfg.Request.File, a.opts)
	if err != nil {
		return fmt.Errorf("failed to open request: %w", err)
	}
	defer r.Close()

	var payload any
	if a.store != nil {
		doc, comp, err := a.evaluator.Evaluate(ctx, a.store, r, a.cfg.Request.OperationName)
		if err != nil {
			if comp == nil {
				return a.compileFailure(err, out)
			}
			return fmt.Errorf("failed to execute query: %w", err)
		}
		payload = doc
	} else {
		comp, err := a.evaluator.Compile(ctx, r, a.cfg.Request.OperationName)
		if err != nil {
			return a.compileFailure(err, out)
		}
		payload = comp.Result
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Debug("run finished", slog.Bool("executed", a.store != nil))
	return nil
}

// compileFailure writes validation errors to out. Other failures are returned
// unchanged.
func (a *App) compileFailure(err error, out io.Writer) error {
	var compileErrs planner.Errors
	if !errors.As(err, &compileErrs) {
		return err
	}
	report := compileErrorOutput{}
	for _, msg := range compileErrs.Messages() {
		report.Errors = append(report.Errors, compileErrorMessage{Message: msg})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		return fmt.Errorf("failed to write errors: %w", encErr)
	}
	return ErrCompileFailed
}
