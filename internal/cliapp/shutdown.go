package cliapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lds-graphql-eval/internal/logging"
)

// releaseStack holds the closers of everything a run opened: the store and
// the telemetry providers. They are released newest first, so the store is
// closed before the providers that observe it are flushed.
type releaseStack struct {
	closers []closer
}

type closer struct {
	component string
	close     func(context.Context) error
}

func (s *releaseStack) add(component string, fn func(context.Context) error) {
	s.closers = append(s.closers, closer{component: component, close: fn})
}

// releaseAll closes every component, even after a failure, and returns the
// failures joined.
func (s *releaseStack) releaseAll(ctx context.Context, logger *logging.Logger) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if logger != nil {
			logger.Debug("releasing component", slog.String("component", c.component))
		}
		if err := c.close(ctx); err != nil {
			if logger != nil {
				logger.Warn("failed to release component",
					slog.String("component", c.component),
					slog.String("error", err.Error()),
				)
			}
			errs = append(errs, fmt.Errorf("%s: %w", c.component, err))
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Shutdown closes the store, writes the metrics text file and flushes the
// telemetry providers. Only the first call does any work; later calls
// return nil.
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	a.shutdownOnce.Do(func() {
		a.stateMu.Lock()
		stack := a.release
		a.stateMu.Unlock()

		err = stack.releaseAll(ctx, a.logger)
	})
	return err
}
